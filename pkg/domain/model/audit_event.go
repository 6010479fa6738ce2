package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// AuditEventID is the identifier of an audit trail entry
type AuditEventID string

// NewAuditEventID generates a new audit event ID
func NewAuditEventID() AuditEventID {
	return AuditEventID(uuid.NewString())
}

// AuditEvent is an entry of the audit trail
type AuditEvent struct {
	ID             AuditEventID
	OrganizationID string
	Action         types.AuditAction
	EntityType     types.EntityType
	EntityID       string
	EntityName     string
	OldValues      map[string]any
	NewValues      map[string]any
	Notes          string
	CreatedAt      time.Time
}

// NewAuditEvent builds the audit trail entry of a committed change
func NewAuditEvent(change Change, now time.Time) *AuditEvent {
	event := &AuditEvent{
		ID:             NewAuditEventID(),
		OrganizationID: change.OrganizationID,
		Action:         change.Action,
		Notes:          change.Notes,
		CreatedAt:      now,
	}

	if subject := change.Subject(); subject != nil {
		event.EntityType, event.EntityID, event.EntityName = subject.AuditEntity()
	}
	if change.Before != nil {
		event.OldValues = change.Before.AuditValues()
	}
	if change.After != nil {
		event.NewValues = change.After.AuditValues()
	}

	return event
}
