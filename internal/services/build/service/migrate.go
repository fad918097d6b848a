package service

import (
	"context"

	"ecotrack/internal/services/build/domain"

	"github.com/Masterminds/semver/v3"
)

// Prober bridges version skew for a failing root on a 0.x compiler.
//
// It walks back from the current minor to find the newest release whose
// migrate accepts the sources, replays migrate forward one minor at a time up
// to the current one, then rebuilds once. The rebuild decides the outcome
type Prober struct {
	// MaxSteps caps migrate invocations per root
	MaxSteps int
}

// ProbeResult describes one probe
type ProbeResult struct {
	OK     bool
	Anchor uint64
	Steps  []domain.Pin
	Reason string
}

// Run probes root. target and check repeat the original build invocation
func (p Prober) Run(ctx context.Context, tc domain.Toolchain, root string, ver *semver.Version, target domain.Pin, check bool) ProbeResult {
	if ver.Major() != 0 {
		return ProbeResult{Reason: "migrations only bridge 0.x releases"}
	}
	budget := p.MaxSteps
	current := ver.Minor()

	found := false
	var anchor uint64
	for k := current; k >= 1; k-- {
		if budget == 0 {
			return ProbeResult{Reason: "migration step budget exhausted"}
		}
		budget--
		out, err := tc.Migrate(ctx, root, domain.MinorPin(k))
		if ctx.Err() != nil {
			return ProbeResult{Reason: ctx.Err().Error()}
		}
		if err == nil && out.OK {
			anchor, found = k, true
			break
		}
	}
	if !found {
		return ProbeResult{Reason: "no release could migrate the sources"}
	}

	res := ProbeResult{Anchor: anchor}
	for m := anchor; m <= current; m++ {
		if budget == 0 {
			res.Reason = "migration step budget exhausted"
			return res
		}
		budget--
		pin := domain.MinorPin(m)
		res.Steps = append(res.Steps, pin)
		// a failed step is expected when a release had nothing to migrate
		_, _ = tc.Migrate(ctx, root, pin)
		if ctx.Err() != nil {
			res.Reason = ctx.Err().Error()
			return res
		}
	}

	out, err := tc.Build(ctx, root, target, check)
	switch {
	case err != nil:
		res.Reason = err.Error()
	case !out.OK:
		res.Reason = "still failing after migration"
	default:
		res.OK = true
	}
	return res
}
