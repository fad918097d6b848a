// Package domain holds the publisher rows and ports
package domain

import (
	"context"
	"time"

	"ecotrack/internal/core/ledger"
)

// ProjectRow is one row of projects
type ProjectRow struct {
	ID  int64
	URL string
}

// BuildLogRow is one row of build_logs, keyed by (project_id, seq)
type BuildLogRow struct {
	ProjectID       int64
	Seq             int
	Rev             string
	CompilerVersion string
	Result          bool
}

// DiscoveryRow is one row of discoveries, keyed by date
type DiscoveryRow struct {
	Date       time.Time
	Sources    int64
	ProjectIDs []int64
}

// SampleRow is one platform count of one download sample
type SampleRow struct {
	Track     string
	Version   string
	Platform  string
	Date      time.Time
	Downloads uint64
}

// Result counts what a publish wrote
type Result struct {
	Projects    int
	BuildLogs   int
	Discoveries int
	Samples     int
}

// PublisherPort mirrors a ledger into the configured backends
type PublisherPort interface {
	Publish(ctx context.Context, l *ledger.Ledger) (Result, error)
}
