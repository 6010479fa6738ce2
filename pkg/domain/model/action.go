package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// ActionSourceRiskAssessment marks actions generated from a risk treatment
const ActionSourceRiskAssessment = "risk_assessment"

// DefaultActionLeadTime is used when no target date is given
const DefaultActionLeadTime = 30 * 24 * time.Hour

// ImprovementAction is a corrective, preventive or improvement task
type ImprovementAction struct {
	ID                    int64
	OrganizationID        string
	Code                  string // Optional: empty when code generation failed
	Type                  types.ActionType
	Source                string
	SourceID              int64 // ID of the originating record, e.g. the risk
	Title                 string
	Plan                  string
	Responsible           string
	TargetDate            time.Time
	Cost                  float64
	ImplementationStatus  types.ImplementationStatus
	EffectivenessVerified bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FormatSequenceCode renders a sequence number as a human readable code, e.g. AC-0007
func FormatSequenceCode(kind types.SequenceKind, n int64) string {
	return fmt.Sprintf("%s-%04d", kind.Prefix(), n)
}

// AuditEntity implements Auditable
func (a *ImprovementAction) AuditEntity() (types.EntityType, string, string) {
	return types.EntityImprovementAction, formatInt64(a.ID), a.Title
}

// AuditValues implements Auditable
func (a *ImprovementAction) AuditValues() map[string]any {
	return map[string]any{
		"id":                     a.ID,
		"code":                   a.Code,
		"type":                   a.Type.String(),
		"source":                 a.Source,
		"source_id":              a.SourceID,
		"title":                  a.Title,
		"plan":                   a.Plan,
		"responsible":            a.Responsible,
		"target_date":            a.TargetDate.Format(time.DateOnly),
		"cost":                   a.Cost,
		"implementation_status":  a.ImplementationStatus.String(),
		"effectiveness_verified": a.EffectivenessVerified,
	}
}
