package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrThreatNotFound = errors.New("threat not found")
	ErrRiskNotFound   = errors.New("risk not found")

	// Precondition errors
	ErrOrganizationRequired = errors.New("organization context is required")
	ErrThreatRequired       = errors.New("threat is required")
	ErrSessionClosed        = errors.New("evaluation session is closed")

	// Catalog errors
	ErrNotCustomThreat      = errors.New("only custom threats of the organization can be changed")
	ErrThreatInUse          = errors.New("threat is referenced by risks")
	ErrConfirmationRequired = errors.New("confirmation required")

	// Task errors
	ErrInvalidTaskInput = errors.New("invalid task input")
)

// Context keys for error values
const (
	OrganizationIDKey = "organization_id"
	ThreatIDKey       = "threat_id"
	RiskIDKey         = "risk_id"
	SessionIDKey      = "session_id"
	ReferenceCountKey = "reference_count"
)

// organizationID returns the organization of the context or ErrOrganizationRequired
func organizationID(ctx context.Context) (string, error) {
	orgID, ok := model.OrganizationIDFromContext(ctx)
	if !ok {
		return "", goerr.Wrap(ErrOrganizationRequired, "no organization in context")
	}
	return orgID, nil
}
