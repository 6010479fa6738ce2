package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Audit is an internal audit whose scope lists the controls to verify
type Audit struct {
	ID             int64
	OrganizationID string
	Code           string
	Title          string
	ControlScope   []string
	PlannedDate    *time.Time
	Status         types.AuditStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AuditEntity implements Auditable
func (a *Audit) AuditEntity() (types.EntityType, string, string) {
	return types.EntityAudit, formatInt64(a.ID), a.Title
}

// AuditValues implements Auditable
func (a *Audit) AuditValues() map[string]any {
	values := map[string]any{
		"id":            a.ID,
		"code":          a.Code,
		"title":         a.Title,
		"control_scope": append([]string{}, a.ControlScope...),
		"status":        a.Status.String(),
	}
	if a.PlannedDate != nil {
		values["planned_date"] = a.PlannedDate.Format(time.DateOnly)
	}
	return values
}
