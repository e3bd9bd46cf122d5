package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/nvx-fleet/internal/audit"
	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/status"
)

// endpointDetail is the body of GET /endpoints/{id}.
type endpointDetail struct {
	endpoint.Snapshot
	Inputs []endpoint.InputPort `json:"inputs,omitempty"`
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (endpoint.ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := endpoint.ParseID(raw)
	if err != nil {
		writeBadRequest(w, "invalid endpoint id: "+raw)
		return 0, false
	}
	return id, true
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, _ *http.Request) {
	snaps := s.status.Snapshots()
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": snaps,
		"count":     len(snaps),
	})
}

func (s *Server) handleFleetStats(w http.ResponseWriter, _ *http.Request) {
	if s.fleet == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "fleet statistics not available")
		return
	}
	writeJSON(w, http.StatusOK, s.fleet.Stats())
}

func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	snap, found := s.status.Snapshot(id)
	if !found {
		writeNotFound(w, "endpoint "+id.String()+" not found")
		return
	}
	inputs, _ := s.status.Inputs(id)
	writeJSON(w, http.StatusOK, endpointDetail{Snapshot: snap, Inputs: inputs})
}

func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ident, found := s.status.IdentitySummary(id)
	if !found {
		writeNotFound(w, "endpoint "+id.String()+" not found")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

// parseLimit reads ?limit=; absent means the repository default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeBadRequest(w, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, found := s.status.Snapshot(id); !found {
		writeNotFound(w, "endpoint "+id.String()+" not found")
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "event history not available")
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	entries, err := s.history.Recent(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("failed to read event history", "endpoint", id.String(), "error", err)
		writeInternalError(w, "failed to read event history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"count":  len(entries),
	})
}

func (s *Server) handleLatestEvents(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "event history not available")
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	entries, err := s.history.Latest(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read event history", "error", err)
		writeInternalError(w, "failed to read event history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"count":  len(entries),
	})
}

func (s *Server) handleSyncAll(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.SyncStatus(nil))
}

func (s *Server) handleSyncOne(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	res, err := s.status.Query(raw)
	if err != nil {
		writeBadRequest(w, "invalid endpoint id: "+raw)
		return
	}
	if res.Kind == status.SyncNotFound {
		writeNotFound(w, "endpoint "+raw+" not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReaffirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.status.ReaffirmConfiguration(id)
	s.recordAudit(r, audit.ActionReaffirm, &id, err)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, status.ErrEndpointNotFound):
		writeNotFound(w, "endpoint "+id.String()+" not found")
	case errors.Is(err, status.ErrNotRegistered):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		s.logger.Warn("reaffirm failed", "endpoint", id.String(), "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeDeviceError, err.Error())
	}
}
