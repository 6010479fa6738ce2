package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// ControlVerificationInterval is how long an implemented control stays verified
const ControlVerificationInterval = 365 * 24 * time.Hour

// Control is an organization's implementation of a security control (e.g. ISO 27001 A.8.8)
type Control struct {
	OrganizationID       string
	Reference            string
	Name                 string
	ImplementationStatus types.ImplementationStatus
	LastVerifiedAt       *time.Time
	UpdatedAt            time.Time
}

// NeedsVerification reports whether an implemented control was never
// verified or was last verified more than a year before now
func (c *Control) NeedsVerification(now time.Time) bool {
	if c.ImplementationStatus != types.ImplementationImplemented {
		return false
	}
	if c.LastVerifiedAt == nil {
		return true
	}
	return now.Sub(*c.LastVerifiedAt) > ControlVerificationInterval
}
