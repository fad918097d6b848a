package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ecotrack/internal/platform/store"
	"ecotrack/internal/services/publish/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	sql  string
	args []any
}

type recQ struct {
	calls []call
	err   error
}

func (r *recQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	r.calls = append(r.calls, call{sql, args})
	return nil, r.err
}
func (r *recQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, r.err }
func (r *recQ) QueryRow(context.Context, string, ...any) store.Row        { return nil }

func TestUpsertProjects_SQL(t *testing.T) {
	q := &recQ{}
	st := NewPG().Bind(q)
	require.NoError(t, st.UpsertProjects(context.Background(), []domain.ProjectRow{
		{ID: 0, URL: "https://github.com/a/b"},
		{ID: 1, URL: "https://github.com/c/d"},
	}))
	require.Len(t, q.calls, 1)
	assert.True(t, strings.HasPrefix(q.calls[0].sql, "INSERT INTO projects (id, url) VALUES ($1,$2),($3,$4) ON CONFLICT (id)"), q.calls[0].sql)
	assert.Equal(t, []any{int64(0), "https://github.com/a/b", int64(1), "https://github.com/c/d"}, q.calls[0].args)
}

func TestUpsertBuildLogs_Chunks(t *testing.T) {
	q := &recQ{}
	xs := make([]domain.BuildLogRow, chunk+3)
	for i := range xs {
		xs[i] = domain.BuildLogRow{ProjectID: int64(i), Seq: 0, Rev: "r", CompilerVersion: "0.5.0"}
	}
	require.NoError(t, NewPG().Bind(q).UpsertBuildLogs(context.Background(), xs))
	require.Len(t, q.calls, 2)
	assert.Len(t, q.calls[0].args, chunk*5)
	assert.Len(t, q.calls[1].args, 3*5)
	assert.Contains(t, q.calls[1].sql, "VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10),($11,$12,$13,$14,$15) ON CONFLICT (project_id, seq)")
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	q := &recQ{}
	require.NoError(t, NewPG().Bind(q).UpsertDiscoveries(context.Background(), nil))
	assert.Empty(t, q.calls)
}

func TestUpsertDiscoveries_NilIDsBecomeEmptyArray(t *testing.T) {
	q := &recQ{}
	at := time.Unix(1700000000, 0).UTC()
	require.NoError(t, NewPG().Bind(q).UpsertDiscoveries(context.Background(), []domain.DiscoveryRow{{Date: at, Sources: 3}}))
	assert.Equal(t, []any{at, int64(3), []int64{}}, q.calls[0].args)
}

func TestUpsert_ErrorIsDBCoded(t *testing.T) {
	q := &recQ{err: errors.New("conn reset")}
	err := NewPG().Bind(q).UpsertProjects(context.Background(), []domain.ProjectRow{{ID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert projects")
}

type fakeCH struct {
	execs   []string
	table   string
	cols    []string
	rows    [][]any
	results [][]any
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*time.Time) = row[1].(time.Time)
	return nil
}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}
func (f *fakeCH) Insert(_ context.Context, table string, cols []string, rows [][]any) error {
	f.table, f.cols, f.rows = table, cols, rows
	return nil
}
func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) {
	return &fakeRows{data: f.results}, nil
}
func (f *fakeCH) Close() error { return nil }

func TestCHSamples(t *testing.T) {
	at := time.Unix(1700000000, 0)
	f := &fakeCH{results: [][]any{{"compiler", at}}}
	s := NewCH(f)

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.Contains(t, f.execs[0], "ReplacingMergeTree")

	latest, err := s.LatestDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Time{"compiler": at.UTC()}, latest)

	require.NoError(t, s.InsertSamples(context.Background(), []domain.SampleRow{
		{Track: "compiler", Version: "0.5.0", Platform: "X86_64Linux", Date: at, Downloads: 9},
	}))
	assert.Equal(t, "download_samples", f.table)
	assert.Equal(t, sampleCols, f.cols)
	assert.Equal(t, []any{"compiler", "0.5.0", "X86_64Linux", at.UTC(), uint64(9)}, f.rows[0])
}
