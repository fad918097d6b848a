package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "ecotrack/internal/platform/errors"
	pnet "ecotrack/internal/platform/net"
	phttp "ecotrack/internal/platform/net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestHandle_OKEnvelope(t *testing.T) {
	h := phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Response{Body: map[string]int{"n": 3}, Header: http.Header{"Cache-Control": {"no-store"}}}
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-9"))
	rr := httptest.NewRecorder()
	h(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	env := decode(t, rr)
	assert.Equal(t, "req-9", env.RequestID)
	assert.Equal(t, map[string]any{"n": float64(3)}, env.Data)
}

func TestHandle_ErrorMapsStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{perr.NotFoundf("project 9"), http.StatusNotFound},
		{perr.InvalidArgf("bad track"), http.StatusUnprocessableEntity},
		{perr.Decodef("broken"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		phttp.Handle(func(*http.Request) phttp.Response { return phttp.Error(c.err) })(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, c.status, rr.Code)
		env := decode(t, rr)
		assert.Equal(t, perr.CodeOf(c.err), env.Code)
		assert.NotEmpty(t, env.Error)
		assert.Nil(t, env.Data)
	}
}

func TestGetJSON(t *testing.T) {
	srv := phttp.NewServer("127.0.0.1:0")
	r := srv.Router()
	r.Route("/api", func(sub phttp.Router) {
		phttp.GetJSON(sub, "/ok", func(*http.Request) (any, error) { return []int{1, 2}, nil })
		phttp.GetJSON(sub, "/missing", func(*http.Request) (any, error) { return nil, perr.ErrNotFound })
	})

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ok", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{float64(1), float64(2)}, decode(t, rr).Data)

	rr = httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ok", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
