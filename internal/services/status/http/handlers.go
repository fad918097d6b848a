// Package http provides the http transport for status queries
package http

import (
	"bytes"
	stdhttp "net/http"
	"strconv"

	"ecotrack/internal/core/ledger"
	perr "ecotrack/internal/platform/errors"
	phttp "ecotrack/internal/platform/net/http"
	"ecotrack/internal/services/status/domain"

	"github.com/go-chi/chi/v5"
)

// Register mounts the status endpoints on r
func Register(r phttp.Router, q domain.QueryPort) {
	h := &handlers{q: q}

	phttp.GetJSON(r, "/healthz", h.health)
	r.Route("/api", func(api phttp.Router) {
		phttp.GetJSON(api, "/projects", h.projects)
		phttp.GetJSON(api, "/projects/{id}", h.project)
		phttp.GetJSON(api, "/downloads/{track}", h.downloads)
		phttp.GetJSON(api, "/discovery", h.discovery)
	})
	r.Get("/plot.svg", h.plot)
}

type handlers struct{ q domain.QueryPort }

func (h *handlers) health(r *stdhttp.Request) (any, error) {
	return h.q.Health(r.Context())
}

// projects accepts ?failing=true
func (h *handlers) projects(r *stdhttp.Request) (any, error) {
	var f domain.ProjectFilter
	if v := r.URL.Query().Get("failing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("failing must be a boolean"), "failing")
		}
		f.Failing = b
	}
	return h.q.Projects(r.Context(), f)
}

func (h *handlers) project(r *stdhttp.Request) (any, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("project id must be a non-negative integer"), "id")
	}
	return h.q.Project(r.Context(), id)
}

func (h *handlers) downloads(r *stdhttp.Request) (any, error) {
	return h.q.Downloads(r.Context(), ledger.Track(chi.URLParam(r, "track")))
}

func (h *handlers) discovery(r *stdhttp.Request) (any, error) {
	return h.q.Discovery(r.Context())
}

func (h *handlers) plot(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var buf bytes.Buffer
	if err := h.q.Plot(r.Context(), &buf); err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
