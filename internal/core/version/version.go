// Package version provides build information for the ecotrack binary
package version

import "fmt"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'ecotrack/internal/core/version.version=v0.1.0'
// -X 'ecotrack/internal/core/version.commit=abcd' -X 'ecotrack/internal/core/version.date=2026-01-02'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information
func Info() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// String renders the one line form printed by --version
func (b BuildInfo) String() string {
	return fmt.Sprintf("ecotrack %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}
