package ch

import (
	"context"
	"errors"
	"testing"

	kit "ecotrack/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func TestInsertSQL(t *testing.T) {
	got := InsertSQL("download_samples", []string{"track", "version", "ts"})
	if got != "INSERT INTO download_samples (track, version, ts)" {
		t.Fatalf("InsertSQL = %q", got)
	}
	if got := InsertSQL("t", nil); got != "INSERT INTO t" {
		t.Fatalf("InsertSQL no cols = %q", got)
	}
}

func TestOptions_ParsesDSNAndStampsClient(t *testing.T) {
	opts, err := Options(Config{URL: "clickhouse://u:p@ch.local:9000/metrics?dial_timeout=2s", Role: "publish", Tag: "1.2.3"})
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts.Addr) != 1 || opts.Addr[0] != "ch.local:9000" {
		t.Fatalf("addr = %v", opts.Addr)
	}
	if opts.Auth.Database != "metrics" || opts.Auth.Username != "u" {
		t.Fatalf("auth = %+v", opts.Auth)
	}
	if p := opts.ClientInfo.Products; len(p) < 2 || p[0].Name != "ecotrack" || p[0].Version != "1.2.3" || p[1].Name != "role" {
		t.Fatalf("client info = %+v", p)
	}
}

func TestOptions_BadDSN(t *testing.T) {
	if _, err := Options(Config{URL: "clickhouse://%zz"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestOpen_OpenError(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &openConn, func(*clickhouse.Options) (driver.Conn, error) {
		return nil, errors.New("refused")
	})
	_, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/default"})
	if err == nil {
		t.Fatalf("expected open error")
	}
	kit.MustContain(t, err.Error(), "refused")
}
