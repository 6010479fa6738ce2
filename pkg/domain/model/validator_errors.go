package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrValidation       = goerr.New("validation failed")
	ErrMissingRequired  = goerr.New("required field is missing")
	ErrInvalidCategory  = goerr.New("category is not in the threat category set")
	ErrInvalidRating    = goerr.New("rating must be between 1 and 5")
	ErrInvalidTreatment = goerr.New("invalid treatment")
	ErrStageGuard       = goerr.New("evaluation cannot leave the current stage")
	ErrSaveNotPermitted = goerr.New("save is not permitted in the current stage")
	ErrRiskNotPersisted = goerr.New("risk has not been saved yet")
)

// Context keys for error values
const (
	FieldKey    = "field"
	StageKey    = "stage"
	ThreatIDKey = "threat_id"
	RatingKey   = "rating"
)
