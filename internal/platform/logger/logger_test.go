package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "ecotrack/internal/platform/testkit"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

// Init is process-wide so everything touching the root logger lives in one test
func TestInit_Named_C_SetLevel(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:        "info",
		Format:       "json",
		Service:      "ecotrack-test",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "test"},
	})

	Get().Info().Str("k", "v").Msg("root-msg")
	Named("build").Info().Msg("named-msg")

	ctx := WithProject(WithRun(context.Background(), "run-123"), "https://github.com/a/b")
	C(ctx).Info().Msg("ctx-msg")
	if got := RunID(ctx); got != "run-123" {
		t.Fatalf("RunID = %q", got)
	}

	Get().Debug().Msg("hidden-debug")
	SetLevel("debug")
	Get().Debug().Msg("visible-debug")
	SetLevel("info")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, `"component":"build"`)
	kit.MustContain(t, out, `"run_id":"run-123"`)
	kit.MustContain(t, out, `"project":"https://github.com/a/b"`)
	kit.MustContain(t, out, `"build":"test"`)
	kit.MustContain(t, out, `"service":"ecotrack-test"`)
	kit.MustContain(t, out, "visible-debug")
	if strings.Contains(out, "hidden-debug") {
		t.Fatalf("debug line leaked at info level:\n%s", out)
	}
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_CALLER", "true")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || !opt.WithCaller {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
}

func TestWith_EmptyValuesLeaveContext(t *testing.T) {
	ctx := context.Background()
	if WithRun(ctx, "") != ctx || WithProject(ctx, "") != ctx {
		t.Fatalf("empty values should not wrap ctx")
	}
	if RunID(ctx) != "" {
		t.Fatalf("RunID on bare ctx should be empty")
	}
}
