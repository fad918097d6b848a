package service

import (
	"testing"

	kit "ecotrack/internal/platform/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoots(t *testing.T) {
	dir := kit.Tree(t, map[string]string{
		"Veryl.toml":             "",
		"ip/uart/Veryl.toml":     "",
		"ip/spi/Veryl.toml":      "",
		"ip/spi/src/a.veryl":     "",
		".git/Veryl.toml":        "",
		"docs/Veryl.toml.sample": "",
	})
	roots, err := findRoots(dir, "Veryl.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{".", "ip/spi", "ip/uart"}, roots)
}

func TestFindRoots_None(t *testing.T) {
	dir := kit.Tree(t, map[string]string{"README.md": "hi"})
	roots, err := findRoots(dir, "Veryl.toml")
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestFindRoots_MissingDir(t *testing.T) {
	_, err := findRoots(t.TempDir()+"/nope", "Veryl.toml")
	assert.Error(t, err)
}
