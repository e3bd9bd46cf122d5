package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/nvx-fleet/internal/audit"
	"github.com/nerrad567/nvx-fleet/internal/auth"
	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

const auditSource = "api"

// recordAudit stores the outcome of an action. Failures to store are
// logged and never change the response.
func (s *Server) recordAudit(r *http.Request, action string, id *endpoint.ID, actionErr error) {
	if s.audit == nil {
		return
	}

	e := &audit.Entry{
		Action:     action,
		EndpointID: id,
		Source:     auditSource,
		Outcome:    audit.OutcomeOK,
	}
	if claims, ok := r.Context().Value(ctxKeyClaims).(*auth.CustomClaims); ok {
		e.Actor = claims.Subject
	}
	if actionErr != nil {
		e.Outcome = audit.OutcomeFailed
		e.Details = map[string]any{"error": actionErr.Error()}
	}
	if reqID, ok := r.Context().Value(ctxKeyRequestID).(string); ok {
		if e.Details == nil {
			e.Details = map[string]any{}
		}
		e.Details["request_id"] = reqID
	}

	if err := s.audit.Create(r.Context(), e); err != nil {
		s.logger.Error("failed to record audit entry", "action", action, "error", err)
	}
}

// handleListAudit serves GET /audit?action=&endpoint=&limit=&offset=.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit log not available")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{Action: q.Get("action")}

	if raw := q.Get("endpoint"); raw != "" {
		id, err := endpoint.ParseID(raw)
		if err != nil {
			writeBadRequest(w, "invalid endpoint id: "+raw)
			return
		}
		filter.EndpointID = &id
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter.Limit = limit

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	res, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
