package store

import (
	"context"
	"errors"

	perr "ecotrack/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// ExecOne runs sql and fails unless exactly one row was affected
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	ct, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return perr.FromPostgres(err, "exec")
	}
	if n := ct.RowsAffected(); n != 1 {
		return perr.Newf(perr.ErrorCodeDB, "expected 1 row affected, got %d", n)
	}
	return nil
}

// Scalar scans a single value from the first row
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return v, perr.Wrap(err, perr.ErrorCodeNotFound, "no rows")
		}
		return v, perr.FromPostgres(err, "scalar")
	}
	return v, nil
}

// Many collects every row through scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "query")
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "rows")
	}
	return out, nil
}
