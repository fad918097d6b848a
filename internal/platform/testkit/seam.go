package testkit

import (
	"sync"
	"testing"
)

// seams guards package level vars that production code reads through
// (constructors, clocks, build info) and tests replace with Swap
var seams sync.Mutex

// Swap sets *target to v until the test ends
func Swap[T any](t testing.TB, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process wide lock until the test ends, so tests swapping the
// same seam never overlap even under t.Parallel
func Serial(t testing.TB) {
	t.Helper()
	seams.Lock()
	t.Cleanup(seams.Unlock)
}
