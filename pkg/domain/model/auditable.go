package model

import (
	"strconv"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Auditable is implemented by records whose changes are written to the audit trail
type Auditable interface {
	// AuditEntity returns the entity type, ID and display name
	AuditEntity() (types.EntityType, string, string)
	// AuditValues returns a snapshot of the record for before/after comparison
	AuditValues() map[string]any
}

// Change describes a committed create, update or delete
type Change struct {
	OrganizationID string
	Action         types.AuditAction
	Before         Auditable // nil on create
	After          Auditable // nil on delete
	Notes          string
}

// Subject returns the record the change applies to
func (c Change) Subject() Auditable {
	if c.After != nil {
		return c.After
	}
	return c.Before
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
