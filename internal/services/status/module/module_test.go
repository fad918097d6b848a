package module

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"ecotrack/internal/modkit"
	"ecotrack/internal/platform/config"
	perr "ecotrack/internal/platform/errors"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	o := FromConfig(config.New())
	assert.Equal(t, "127.0.0.1:4000", o.Addr)
	assert.Empty(t, o.CORSOrigins)
	assert.Equal(t, 500*time.Millisecond, o.SlowRequest)

	t.Setenv("ECOTRACK_API_CORS_ORIGINS", "https://a.example, https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, FromConfig(config.New()).CORSOrigins)
}

func TestNew_BadAddr(t *testing.T) {
	_, err := New(modkit.Deps{Log: zerolog.Nop()}, "db.json", Options{Addr: "no port"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestNew_ServesWithMiddleware(t *testing.T) {
	t.Setenv("ECOTRACK_API_CORS_ORIGINS", "https://dash.example")
	m, err := New(modkit.Deps{Log: zerolog.Nop()}, filepath.Join(t.TempDir(), "db.json"), Options{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	assert.Equal(t, "status", m.Name())
	assert.Equal(t, "127.0.0.1:0", m.Server().Addr())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://dash.example")
	rr := httptest.NewRecorder()
	m.Server().Router().Mux().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://dash.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}
