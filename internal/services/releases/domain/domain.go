// Package domain holds the release poller ports
package domain

import (
	"context"

	"ecotrack/internal/core/ledger"
)

// Lister lists the releases of a repository given as owner/name
type Lister interface {
	ListReleases(ctx context.Context, ownerRepo string) ([]ledger.Release, error)
}

// TrackResult summarizes one track of a poll
type TrackResult struct {
	Track    ledger.Track
	Repo     string
	Releases int
	ledger.RecordResult
}

// PollerPort records download counts for every track into a ledger
type PollerPort interface {
	Poll(ctx context.Context, l *ledger.Ledger) ([]TrackResult, error)
}
