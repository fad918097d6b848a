// Package domain holds the read models served by the status API
package domain

import (
	"context"
	"io"
	"time"

	"ecotrack/internal/core/ledger"
)

// Health reports whether the document could be read
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Projects    int    `json:"projects"`
	Discoveries int    `json:"discoveries"`
}

// ProjectSummary is one row of the project list
type ProjectSummary struct {
	ID     uint64           `json:"id"`
	URL    string           `json:"url"`
	Builds int              `json:"builds"`
	Latest *ledger.BuildLog `json:"latest,omitempty"`
}

// ProjectDetail is a project with its full build history
type ProjectDetail struct {
	ID        uint64            `json:"id"`
	URL       string            `json:"url"`
	BuildLogs []ledger.BuildLog `json:"build_logs"`
}

// VersionDownloads is the sample history of one release
type VersionDownloads struct {
	Version string                  `json:"version"`
	Samples []ledger.DownloadSample `json:"samples"`
}

// Downloads is the history of one track in ascending version order
type Downloads struct {
	Track    ledger.Track       `json:"track"`
	Versions []VersionDownloads `json:"versions"`
}

// DiscoveryPoint is one snapshot of the ecosystem size
type DiscoveryPoint struct {
	Date     time.Time `json:"date"`
	Sources  uint64    `json:"sources"`
	Projects int       `json:"projects"`
}

// ProjectFilter narrows the project list
type ProjectFilter struct {
	// Failing keeps projects whose latest build failed
	Failing bool
}

// QueryPort is the read surface of the status API
type QueryPort interface {
	Health(ctx context.Context) (Health, error)
	Projects(ctx context.Context, f ProjectFilter) ([]ProjectSummary, error)
	Project(ctx context.Context, id uint64) (ProjectDetail, error)
	Downloads(ctx context.Context, track ledger.Track) (Downloads, error)
	Discovery(ctx context.Context) ([]DiscoveryPoint, error)
	Plot(ctx context.Context, w io.Writer) error
}
