package http

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// getSuggestions returns the candidate lists truncated to the display limit,
// overridable with ?limit=N, along with the full merged scope
func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := s.uc.Suggestion.DisplayLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, goerr.Wrap(errInvalidRequest, "limit must be a positive integer", goerr.V("limit", raw)))
			return
		}
		limit = n
	}

	bundle, err := s.uc.Suggestion.Suggest(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSuggestionResponse(bundle, limit))
}

func (s *Server) proposeAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	planned, err := parseDate("planned_date", req.PlannedDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit, err := s.uc.Suggestion.ProposeAudit(r.Context(), req.Title, planned)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAuditResponse(audit))
}
