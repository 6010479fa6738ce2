package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

var errInvalidRequest = goerr.New("invalid request")

// statusOf maps use case and domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrThreatNotFound),
		errors.Is(err, usecase.ErrRiskNotFound),
		errors.Is(err, errSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, errInvalidRequest),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrMissingRequired),
		errors.Is(err, model.ErrInvalidCategory),
		errors.Is(err, model.ErrInvalidRating),
		errors.Is(err, model.ErrInvalidTreatment),
		errors.Is(err, usecase.ErrInvalidTaskInput):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrOrganizationRequired),
		errors.Is(err, usecase.ErrThreatRequired),
		errors.Is(err, usecase.ErrSessionClosed),
		errors.Is(err, usecase.ErrNotCustomThreat),
		errors.Is(err, model.ErrStageGuard),
		errors.Is(err, model.ErrSaveNotPermitted),
		errors.Is(err, model.ErrRiskNotPersisted):
		return http.StatusPreconditionFailed

	case errors.Is(err, usecase.ErrThreatInUse):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrConfirmationRequired):
		return http.StatusPreconditionRequired

	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	defer safe.Close(r.Context(), r.Body, "request body")

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return goerr.Wrap(errInvalidRequest, "failed to decode request body", goerr.V("reason", err.Error()))
	}
	return nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errInvalidRequest, "invalid identifier", goerr.V(name, raw))
	}
	return id, nil
}

// parseDate reads an optional YYYY-MM-DD date
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, goerr.Wrap(errInvalidRequest, "date must be formatted as YYYY-MM-DD",
			goerr.V(model.FieldKey, field), goerr.V("value", value))
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
