package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/scoring"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// HighRiskSuggestionThreshold is the inherent score from which an untreated
// risk is proposed for audit verification
const HighRiskSuggestionThreshold = 12

// Risk is an organization's scored and tracked instantiation of a threat
type Risk struct {
	ID             int64
	OrganizationID string
	Type           types.RiskType
	ThreatID       types.ThreatID
	Name           string
	Description    string
	AssetID        string // Optional: asset the risk was evaluated against

	InherentProbability types.Rating
	ImpactOperational   types.Rating
	ImpactEconomic      types.Rating
	ImpactLegal         types.Rating
	InherentImpact      types.Rating // max of the three dimensions
	InherentScore       int
	InherentLevel       types.RiskLevel

	ResidualProbability types.Rating
	ResidualImpact      types.Rating
	ResidualScore       int
	ResidualLevel       types.RiskLevel

	TreatmentStrategy    types.TreatmentStrategy
	TreatmentDescription string
	TreatmentCost        float64
	TreatmentDeadline    *time.Time
	TreatmentResponsible string
	RelatedControls      []string

	Status    types.RiskStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasInherentScore reports whether the inherent fields have been scored
func (r *Risk) HasInherentScore() bool {
	return r.InherentScore > 0
}

// HasResidualScore reports whether the residual fields have been scored
func (r *Risk) HasResidualScore() bool {
	return r.ResidualScore > 0
}

// HasImpactDimensions reports whether the individual impact ratings were
// persisted. Records written before they were stored only carry the max.
func (r *Risk) HasImpactDimensions() bool {
	return r.ImpactOperational.IsSet() || r.ImpactEconomic.IsSet() || r.ImpactLegal.IsSet()
}

// IsHighUnverified reports whether the risk is high or critical and has no
// residual score yet
func (r *Risk) IsHighUnverified() bool {
	return r.InherentScore >= HighRiskSuggestionThreshold && !r.HasResidualScore()
}

// ReductionPercentage returns the score reduction achieved by the treatment
func (r *Risk) ReductionPercentage() (float64, bool) {
	if !r.HasResidualScore() {
		return 0, false
	}
	return scoring.ReductionPercentage(r.InherentScore, r.ResidualScore)
}

// Snapshot returns the fields status derivation depends on
func (r *Risk) Snapshot() RiskSnapshot {
	return RiskSnapshot{
		InherentProbability: r.InherentProbability,
		ImpactOperational:   r.ImpactOperational,
		ImpactEconomic:      r.ImpactEconomic,
		ImpactLegal:         r.ImpactLegal,
		InherentImpact:      r.InherentImpact,
		ResidualProbability: r.ResidualProbability,
		ResidualImpact:      r.ResidualImpact,
		TreatmentPlan:       r.TreatmentDescription,
	}
}

// AuditEntity implements Auditable
func (r *Risk) AuditEntity() (types.EntityType, string, string) {
	return types.EntityRisk, formatInt64(r.ID), r.Name
}

// AuditValues implements Auditable
func (r *Risk) AuditValues() map[string]any {
	values := map[string]any{
		"id":                    r.ID,
		"type":                  r.Type.String(),
		"threat_id":             r.ThreatID.String(),
		"name":                  r.Name,
		"asset_id":              r.AssetID,
		"inherent_probability":  r.InherentProbability.Int(),
		"impact_operational":    r.ImpactOperational.Int(),
		"impact_economic":       r.ImpactEconomic.Int(),
		"impact_legal":          r.ImpactLegal.Int(),
		"inherent_impact":       r.InherentImpact.Int(),
		"inherent_score":        r.InherentScore,
		"inherent_level":        r.InherentLevel.String(),
		"residual_probability":  r.ResidualProbability.Int(),
		"residual_impact":       r.ResidualImpact.Int(),
		"residual_score":        r.ResidualScore,
		"residual_level":        r.ResidualLevel.String(),
		"treatment_strategy":    r.TreatmentStrategy.String(),
		"treatment_description": r.TreatmentDescription,
		"treatment_cost":        r.TreatmentCost,
		"treatment_responsible": r.TreatmentResponsible,
		"related_controls":      append([]string{}, r.RelatedControls...),
		"status":                r.Status.String(),
	}
	if r.TreatmentDeadline != nil {
		values["treatment_deadline"] = r.TreatmentDeadline.Format(time.DateOnly)
	}
	return values
}

// RiskSnapshot is the input of DeriveStatus
type RiskSnapshot struct {
	InherentProbability types.Rating
	ImpactOperational   types.Rating
	ImpactEconomic      types.Rating
	ImpactLegal         types.Rating
	InherentImpact      types.Rating
	ResidualProbability types.Rating
	ResidualImpact      types.Rating
	TreatmentPlan       string
}

// DeriveStatus computes the risk status from scratch. It is applied on every
// save and is intentionally not monotonic: clearing the treatment moves a risk
// back to Valutato.
func DeriveStatus(s RiskSnapshot) types.RiskStatus {
	if strings.TrimSpace(s.TreatmentPlan) != "" && s.ResidualProbability.IsSet() && s.ResidualImpact.IsSet() {
		return types.RiskStatusInTreatment
	}
	impact := types.MaxRating(s.ImpactOperational, s.ImpactEconomic, s.ImpactLegal, s.InherentImpact)
	if s.InherentProbability.IsSet() && impact.IsSet() {
		return types.RiskStatusEvaluated
	}
	return types.RiskStatusIdentified
}
