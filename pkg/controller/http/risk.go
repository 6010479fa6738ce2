package http

import (
	"net/http"
)

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	risks, err := s.uc.Evaluation.ListRisks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]riskResponse, 0, len(risks))
	for _, risk := range risks {
		resp = append(resp, toRiskResponse(risk))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	risk, err := s.uc.Evaluation.GetRisk(r.Context(), riskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.uc.Evaluation.DeleteRisk(r.Context(), riskID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actions, err := s.uc.Task.ListActionsByRisk(r.Context(), riskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]actionResponse, 0, len(actions))
	for _, a := range actions {
		resp = append(resp, toActionResponse(a))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	action, err := s.uc.Task.CreateImprovementAction(r.Context(), riskID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toActionResponse(action))
}

func (s *Server) createTraining(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req trainingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := s.uc.Task.CreateTrainingRecord(r.Context(), riskID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTrainingResponse(record))
}
