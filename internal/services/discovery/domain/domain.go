// Package domain holds the discovery ports and value types
package domain

import (
	"context"
	"time"

	"ecotrack/internal/core/ledger"
)

// Searcher is the code search collaborator
type Searcher interface {
	// SearchCount returns the number of files matching query
	SearchCount(ctx context.Context, query string) (uint64, error)
	// SearchRepos returns the repositories holding files that match query
	SearchRepos(ctx context.Context, query string) (SearchResult, error)
}

// SearchResult is a code search walked across pages
type SearchResult struct {
	Total     uint64
	Repos     []string
	Truncated bool
}

// Seeds lists repositories to track regardless of search results and
// repositories never to track
type Seeds struct {
	Extra   []string `yaml:"extra"`
	Exclude []string `yaml:"exclude"`
}

// Result summarizes one poll
type Result struct {
	At       time.Time
	Sources  uint64
	Found    int
	Excluded int
	New      []uint64
	Projects []uint64
}

// PollerPort records one discovery snapshot into a ledger
type PollerPort interface {
	Poll(ctx context.Context, l *ledger.Ledger) (Result, error)
}
