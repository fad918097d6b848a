package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact(t *testing.T) {
	assert.Equal(t, "INSERT INTO build_logs (project_id, seq) VALUES ($1, $2)",
		compact("INSERT INTO build_logs\n\t(project_id, seq)\n  VALUES ($1, $2)"))
	assert.Equal(t, "", compact(" \n\t "))
}

type traceLine struct {
	Level     string  `json:"level"`
	Component string  `json:"component"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Slow      bool    `json:"slow"`
	SQL       string  `json:"sql"`
	Error     string  `json:"error"`
	Message   string  `json:"message"`
}

func trace(t *testing.T, root zerolog.Logger, buf *bytes.Buffer, ev QueryEvent) traceLine {
	t.Helper()
	buf.Reset()
	Tracer(root).OnQuery(context.Background(), ev)
	var line traceLine
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	return line
}

func TestTracer_LogsEveryStatement(t *testing.T) {
	var buf bytes.Buffer
	// a warn level root must not hide statements once LOG_SQL asked for them
	root := zerolog.New(&buf).Level(zerolog.WarnLevel)

	line := trace(t, root, &buf, QueryEvent{
		SQL:       "SELECT count(*)\n  FROM projects",
		ElapsedUS: 2500,
	})
	assert.Equal(t, "info", line.Level)
	assert.Equal(t, "pg", line.Component)
	assert.Equal(t, "SELECT count(*) FROM projects", line.SQL)
	assert.InDelta(t, 2.5, line.ElapsedMS, 0.0001)
	assert.Equal(t, "pg query", line.Message)
	assert.Empty(t, line.Error)
}

func TestTracer_WarnsOnSlowOrFailed(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf)

	slow := trace(t, root, &buf, QueryEvent{SQL: "INSERT INTO discoveries VALUES ($1)", ElapsedUS: 900000, Slow: true})
	assert.Equal(t, "warn", slow.Level)
	assert.True(t, slow.Slow)

	failed := trace(t, root, &buf, QueryEvent{SQL: "INSERT INTO projects VALUES ($1)", Err: errors.New("deadlock detected")})
	assert.Equal(t, "warn", failed.Level)
	assert.False(t, failed.Slow)
	assert.Equal(t, "deadlock detected", failed.Error)
}
