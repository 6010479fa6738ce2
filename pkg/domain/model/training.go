package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// TrainingRecord is a training session planned for an employee
type TrainingRecord struct {
	ID                int64
	OrganizationID    string
	Employee          string
	Title             string
	Type              types.TrainingType
	Date              time.Time
	Notes             string
	Status            types.TrainingStatus
	CertificateIssued bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AuditEntity implements Auditable
func (r *TrainingRecord) AuditEntity() (types.EntityType, string, string) {
	return types.EntityTrainingRecord, formatInt64(r.ID), r.Title
}

// AuditValues implements Auditable
func (r *TrainingRecord) AuditValues() map[string]any {
	return map[string]any{
		"id":                 r.ID,
		"employee":           r.Employee,
		"title":              r.Title,
		"type":               r.Type.String(),
		"date":               r.Date.Format(time.DateOnly),
		"notes":              r.Notes,
		"status":             r.Status.String(),
		"certificate_issued": r.CertificateIssued,
	}
}
