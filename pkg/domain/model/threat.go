package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// CustomThreatIDPrefix prefixes identifiers of organization defined threats
const CustomThreatIDPrefix = "CUSTOM"

// Threat is a catalog entry describing a cause of potential harm
type Threat struct {
	ID                  types.ThreatID
	Name                string
	Description         string
	Category            types.ThreatCategory
	NIS2Type            types.NIS2IncidentType
	BaselineProbability types.Rating
	BaselineImpact      types.Rating
	RecommendedControls []string
	Sectors             []string // empty means every sector
	IsCustom            bool
	OrganizationID      string // empty for shared catalog entries
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewCustomThreatID generates an identifier for an organization defined threat
func NewCustomThreatID() types.ThreatID {
	return types.ThreatID(CustomThreatIDPrefix + "-" + uuid.NewString()[:8])
}

// Validate checks the threat content. It performs no I/O.
func (t *Threat) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid threat ID", goerr.V(ThreatIDKey, t.ID), goerr.V("reason", err.Error()))
	}
	if strings.TrimSpace(t.Name) == "" {
		return goerr.Wrap(ErrMissingRequired, "threat name is required", goerr.V(FieldKey, "name"))
	}
	if strings.TrimSpace(t.Description) == "" {
		return goerr.Wrap(ErrMissingRequired, "threat description is required", goerr.V(FieldKey, "description"))
	}
	if !t.Category.IsValid() {
		return goerr.Wrap(ErrInvalidCategory, "invalid threat category", goerr.V("category", t.Category))
	}
	if !t.NIS2Type.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid NIS2 incident type", goerr.V("nis2_type", t.NIS2Type))
	}
	if !t.BaselineProbability.IsValid() {
		return goerr.Wrap(ErrInvalidRating, "invalid baseline probability",
			goerr.V(FieldKey, "baseline_probability"), goerr.V(RatingKey, t.BaselineProbability))
	}
	if !t.BaselineImpact.IsValid() {
		return goerr.Wrap(ErrInvalidRating, "invalid baseline impact",
			goerr.V(FieldKey, "baseline_impact"), goerr.V(RatingKey, t.BaselineImpact))
	}
	return nil
}

// IsShared reports whether the threat belongs to the built-in catalog
func (t *Threat) IsShared() bool {
	return !t.IsCustom && t.OrganizationID == ""
}

// IsVisibleTo reports whether an organization can see the threat
func (t *Threat) IsVisibleTo(organizationID string) bool {
	return t.IsShared() || t.OrganizationID == organizationID
}

// AppliesToSector reports whether the threat is relevant for a sector.
// Threats without declared sectors apply everywhere.
func (t *Threat) AppliesToSector(sector string) bool {
	if sector == "" || len(t.Sectors) == 0 {
		return true
	}
	for _, s := range t.Sectors {
		if strings.EqualFold(s, sector) {
			return true
		}
	}
	return false
}

// MatchesText reports whether the query appears in the id, name or description
func (t *Threat) MatchesText(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(string(t.ID)), q) ||
		strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// AuditEntity implements Auditable
func (t *Threat) AuditEntity() (types.EntityType, string, string) {
	return types.EntityThreat, t.ID.String(), t.Name
}

// AuditValues implements Auditable
func (t *Threat) AuditValues() map[string]any {
	return map[string]any{
		"id":                   t.ID.String(),
		"name":                 t.Name,
		"description":          t.Description,
		"category":             t.Category.String(),
		"nis2_type":            t.NIS2Type.String(),
		"baseline_probability": t.BaselineProbability.Int(),
		"baseline_impact":      t.BaselineImpact.Int(),
		"recommended_controls": append([]string{}, t.RecommendedControls...),
		"sectors":              append([]string{}, t.Sectors...),
		"is_custom":            t.IsCustom,
	}
}
