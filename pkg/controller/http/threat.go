package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func threatIDParam(r *http.Request) types.ThreatID {
	return types.ThreatID(chi.URLParam(r, "threatID"))
}

func (s *Server) listThreats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := usecase.ThreatFilter{
		Category:   types.ThreatCategory(q.Get("category")),
		NIS2Type:   types.NIS2IncidentType(q.Get("nis2_type")),
		Sector:     q.Get("sector"),
		SearchText: q.Get("q"),
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		writeError(w, r, goerr.Wrap(errInvalidRequest, "unknown category", goerr.V("category", filter.Category)))
		return
	}
	if !filter.NIS2Type.IsValid() {
		writeError(w, r, goerr.Wrap(errInvalidRequest, "unknown NIS2 type", goerr.V("nis2_type", filter.NIS2Type)))
		return
	}

	threats, err := s.uc.Threat.ListThreats(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]threatResponse, 0, len(threats))
	for _, t := range threats {
		resp = append(resp, toThreatResponse(t))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createThreat(w http.ResponseWriter, r *http.Request) {
	var req threatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	threat, err := s.uc.Threat.CreateCustomThreat(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toThreatResponse(threat))
}

func (s *Server) getThreat(w http.ResponseWriter, r *http.Request) {
	threat, err := s.uc.Threat.GetThreat(r.Context(), threatIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toThreatResponse(threat))
}

func (s *Server) updateThreat(w http.ResponseWriter, r *http.Request) {
	var req threatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	threat, err := s.uc.Threat.UpdateCustomThreat(r.Context(), threatIDParam(r), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toThreatResponse(threat))
}

// deleteThreat requires ?confirm=true once the operator has seen the
// reference count
func (s *Server) deleteThreat(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	if err := s.uc.Threat.DeleteCustomThreat(r.Context(), threatIDParam(r), confirmed); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) threatReferences(w http.ResponseWriter, r *http.Request) {
	id := threatIDParam(r)
	count, err := s.uc.Threat.CheckThreatDeletion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, referencesResponse{ThreatID: id.String(), RiskCount: count})
}
