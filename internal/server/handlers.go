package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/leapgraph/internal/graph"
	"github.com/leapstack-labs/leapgraph/internal/lineage"
	"github.com/leapstack-labs/leapgraph/pkg/core"
)

// Handlers provides the HTTP handlers of the lineage API.
type Handlers struct {
	service *lineage.Service
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *lineage.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{service: service, logger: logger}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message"`
}

type dumpResponse struct {
	Graph core.NamedGraph `json:"graph"`
	Path  string          `json:"path"`
}

// Health reports that the server is up.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Lineage answers GET /api/lineage/{graph}/{scope}/{guid}?view=.
func (h *Handlers) Lineage(w http.ResponseWriter, r *http.Request) {
	guid, err := url.PathUnescape(chi.URLParam(r, "guid"))
	if err != nil {
		h.writeError(w, core.NewError(core.KindVertexNotFound, "lineage", err))
		return
	}
	req, err := lineage.ParseRequest(
		chi.URLParam(r, "graph"),
		chi.URLParam(r, "scope"),
		r.URL.Query().Get("view"),
		guid,
	)
	if err != nil {
		h.writeError(w, lineage.AsError("lineage", err))
		return
	}
	h.writeResult(w, h.service.Lineage(r.Context(), req))
}

// ExportGraph answers GET /api/graphs/{graph} with the whole graph.
func (h *Handlers) ExportGraph(w http.ResponseWriter, r *http.Request) {
	name, err := core.ParseNamedGraph(chi.URLParam(r, "graph"))
	if err != nil {
		h.writeError(w, lineage.AsError("export", err))
		return
	}
	h.writeResult(w, h.service.Export(r.Context(), name))
}

// GraphStats answers GET /api/graphs/{graph}/stats.
func (h *Handlers) GraphStats(w http.ResponseWriter, r *http.Request) {
	name, err := core.ParseNamedGraph(chi.URLParam(r, "graph"))
	if err != nil {
		h.writeError(w, lineage.AsError("stats", err))
		return
	}
	st, err := h.service.Stats(name)
	if err != nil {
		h.writeError(w, lineage.AsError("stats", err))
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

// ListGraphs answers GET /api/graphs with the stats of every named graph.
func (h *Handlers) ListGraphs(w http.ResponseWriter, _ *http.Request) {
	all := make([]graph.Stats, 0, len(core.AllGraphs()))
	for _, name := range core.AllGraphs() {
		st, err := h.service.Stats(name)
		if err != nil {
			h.writeError(w, lineage.AsError("stats", err))
			return
		}
		all = append(all, st)
	}
	h.writeJSON(w, http.StatusOK, all)
}

// DumpGraph answers POST /api/graphs/{graph}/dump.
func (h *Handlers) DumpGraph(w http.ResponseWriter, r *http.Request) {
	name, err := core.ParseNamedGraph(chi.URLParam(r, "graph"))
	if err != nil {
		h.writeError(w, lineage.AsError("dump", err))
		return
	}
	path, err := h.service.Dump(r.Context(), name)
	if err != nil {
		h.writeError(w, lineage.AsError("dump", err))
		return
	}
	h.writeJSON(w, http.StatusOK, dumpResponse{Graph: name, Path: path})
}

func (h *Handlers) writeResult(w http.ResponseWriter, res lineage.Result) {
	if !res.OK() {
		h.writeError(w, res.Err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Payload); err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err *core.Error) {
	h.writeJSON(w, StatusFor(err.Kind), errorBody{Error: errorDetail{Kind: err.Kind, Message: err.Error()}})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind core.ErrorKind) int {
	switch kind {
	case core.KindUnknownGraph, core.KindUnknownScope, core.KindUnknownView:
		return http.StatusBadRequest
	case core.KindVertexNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
