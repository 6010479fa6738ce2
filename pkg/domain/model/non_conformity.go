package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// NonConformity is a finding raised by an audit or incident
type NonConformity struct {
	ID                     int64
	OrganizationID         string
	Title                  string
	Description            string
	RelatedControl         string // Optional
	CorrectiveActionStatus types.CorrectiveActionStatus
	EffectivenessVerified  bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ReadyForVerification reports whether remediation completed and its
// effectiveness still has to be checked
func (n *NonConformity) ReadyForVerification() bool {
	return n.CorrectiveActionStatus == types.CorrectiveActionCompleted && !n.EffectivenessVerified
}
