package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func (s *Server) startEvaluation(w http.ResponseWriter, r *http.Request) {
	var req startEvaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.uc.Evaluation.StartEvaluation(r.Context(), req.ThreatID, req.AssetID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orgID, _ := model.OrganizationIDFromContext(r.Context())
	s.sessions.add(orgID, session)
	writeJSON(w, r, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) startEdit(w http.ResponseWriter, r *http.Request) {
	riskID, err := int64Param(r, "riskID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.uc.Evaluation.StartEdit(r.Context(), riskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orgID, _ := model.OrganizationIDFromContext(r.Context())
	s.sessions.add(orgID, session)
	writeJSON(w, r, http.StatusCreated, toSessionResponse(session))
}

// sessionHandler runs fn on the session named in the URL and writes the
// resulting session state, or the error fn returned
func (s *Server) sessionHandler(fn func(r *http.Request, session *model.EvaluationSession) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, _ := model.OrganizationIDFromContext(r.Context())

		var resp sessionResponse
		err := s.sessions.with(chi.URLParam(r, "sessionID"), orgID, func(session *model.EvaluationSession) error {
			if err := fn(r, session); err != nil {
				return err
			}
			resp = toSessionResponse(session)
			return nil
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func viewSession(r *http.Request, session *model.EvaluationSession) error {
	return nil
}

func closeSession(r *http.Request, session *model.EvaluationSession) error {
	session.Close()
	return nil
}

func setAssessment(r *http.Request, session *model.EvaluationSession) error {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	return session.SetAssessment(model.Assessment{
		Probability:       req.Probability,
		ImpactOperational: req.ImpactOperational,
		ImpactEconomic:    req.ImpactEconomic,
		ImpactLegal:       req.ImpactLegal,
	})
}

func setTreatment(r *http.Request, session *model.EvaluationSession) error {
	var req treatmentRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	treatment, err := req.treatment()
	if err != nil {
		return err
	}
	return session.SetTreatment(treatment)
}

func advanceSession(r *http.Request, session *model.EvaluationSession) error {
	return session.Advance()
}

func backSession(r *http.Request, session *model.EvaluationSession) error {
	session.Back()
	return nil
}

func (s *Server) saveEvaluation(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	orgID, _ := model.OrganizationIDFromContext(r.Context())

	var resp saveResponse
	err := s.sessions.with(chi.URLParam(r, "sessionID"), orgID, func(session *model.EvaluationSession) error {
		risk, err := s.uc.Evaluation.Save(r.Context(), session, req.QuickSave)
		if err != nil {
			return err
		}
		resp = saveResponse{
			Risk:    toRiskResponse(risk),
			Session: toSessionResponse(session),
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
