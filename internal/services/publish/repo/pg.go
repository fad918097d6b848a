// Package repo stores published rows in Postgres and ClickHouse
package repo

import (
	"context"
	"fmt"
	"strings"

	"ecotrack/internal/modkit/repokit"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/store"
	"ecotrack/internal/services/publish/domain"
)

// chunk bounds rows per statement, well under the 65535 parameter limit
const chunk = 500

const pgSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id  BIGINT PRIMARY KEY,
	url TEXT   NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS build_logs (
	project_id       BIGINT  NOT NULL REFERENCES projects (id),
	seq              INT     NOT NULL,
	rev              TEXT    NOT NULL,
	compiler_version TEXT    NOT NULL,
	result           BOOLEAN NOT NULL,
	PRIMARY KEY (project_id, seq)
);
CREATE TABLE IF NOT EXISTS discoveries (
	date        TIMESTAMPTZ PRIMARY KEY,
	sources     BIGINT      NOT NULL,
	project_ids BIGINT[]    NOT NULL
);`

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the relational side of a publish
type Storage interface {
	EnsureSchema(ctx context.Context) error
	UpsertProjects(ctx context.Context, xs []domain.ProjectRow) error
	UpsertBuildLogs(ctx context.Context, xs []domain.BuildLogRow) error
	UpsertDiscoveries(ctx context.Context, xs []domain.DiscoveryRow) error
	CountProjects(ctx context.Context) (int64, error)
}

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, pgSchema); err != nil {
		return perr.FromPostgres(err, "ensure publish schema")
	}
	return nil
}

// UpsertProjects implements Storage
func (s *pg) UpsertProjects(ctx context.Context, xs []domain.ProjectRow) error {
	return upsert(ctx, s.q, "projects", []string{"id", "url"},
		`ON CONFLICT (id) DO UPDATE SET url = EXCLUDED.url`,
		len(xs), func(i int) []any { return []any{xs[i].ID, xs[i].URL} })
}

// UpsertBuildLogs implements Storage
func (s *pg) UpsertBuildLogs(ctx context.Context, xs []domain.BuildLogRow) error {
	return upsert(ctx, s.q, "build_logs", []string{"project_id", "seq", "rev", "compiler_version", "result"},
		`ON CONFLICT (project_id, seq) DO UPDATE SET
			rev = EXCLUDED.rev,
			compiler_version = EXCLUDED.compiler_version,
			result = EXCLUDED.result`,
		len(xs), func(i int) []any {
			x := xs[i]
			return []any{x.ProjectID, x.Seq, x.Rev, x.CompilerVersion, x.Result}
		})
}

// UpsertDiscoveries implements Storage
func (s *pg) UpsertDiscoveries(ctx context.Context, xs []domain.DiscoveryRow) error {
	return upsert(ctx, s.q, "discoveries", []string{"date", "sources", "project_ids"},
		`ON CONFLICT (date) DO UPDATE SET sources = EXCLUDED.sources, project_ids = EXCLUDED.project_ids`,
		len(xs), func(i int) []any {
			x := xs[i]
			ids := x.ProjectIDs
			if ids == nil {
				ids = []int64{}
			}
			return []any{x.Date, x.Sources, ids}
		})
}

// CountProjects implements Storage
func (s *pg) CountProjects(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, s.q, `SELECT count(*) FROM projects`)
}

// upsert writes n rows into table in chunks of multi-row VALUES
func upsert(ctx context.Context, q repokit.Queryer, table string, cols []string, conflict string, n int, row func(i int) []any) error {
	head := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES "
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)

		var sb strings.Builder
		sb.WriteString(head)
		args := make([]any, 0, (hi-lo)*len(cols))
		for i := lo; i < hi; i++ {
			if i > lo {
				sb.WriteByte(',')
			}
			sb.WriteByte('(')
			for c := range cols {
				if c > 0 {
					sb.WriteByte(',')
				}
				fmt.Fprintf(&sb, "$%d", len(args)+c+1)
			}
			sb.WriteByte(')')
			args = append(args, row(i)...)
		}
		sb.WriteByte(' ')
		sb.WriteString(conflict)

		if _, err := q.Exec(ctx, sb.String(), args...); err != nil {
			return perr.FromPostgres(err, "upsert "+table)
		}
	}
	return nil
}
