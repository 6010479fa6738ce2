package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ThreatID is the stable, human readable identifier of a catalog threat (e.g. T-CYB-001)
type ThreatID string

var threatIDPattern = regexp.MustCompile(`^[A-Z0-9]+(-[A-Za-z0-9]+)*$`)

// Validate checks if the ThreatID is valid
func (t ThreatID) Validate() error {
	if t == "" {
		return goerr.New("threat ID cannot be empty")
	}
	if !threatIDPattern.MatchString(string(t)) {
		return goerr.New("threat ID must be uppercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of ThreatID
func (t ThreatID) String() string {
	return string(t)
}

// ThreatCategory is the closed set of threat categories
type ThreatCategory string

const (
	ThreatCategoryNatural        ThreatCategory = "NATURAL_ENVIRONMENTAL"
	ThreatCategoryCyber          ThreatCategory = "CYBER_TECHNICAL"
	ThreatCategoryHardware       ThreatCategory = "HARDWARE_INFRASTRUCTURE"
	ThreatCategoryHuman          ThreatCategory = "HUMAN"
	ThreatCategoryOrganizational ThreatCategory = "ORGANIZATIONAL"
	ThreatCategoryLegal          ThreatCategory = "LEGAL_COMPLIANCE"
	ThreatCategoryPhysical       ThreatCategory = "PHYSICAL"
	ThreatCategoryReputational   ThreatCategory = "REPUTATIONAL"
	ThreatCategoryTechnical      ThreatCategory = "TECHNICAL"
)

// AllThreatCategories returns all valid threat categories
func AllThreatCategories() []ThreatCategory {
	return []ThreatCategory{
		ThreatCategoryNatural,
		ThreatCategoryCyber,
		ThreatCategoryHardware,
		ThreatCategoryHuman,
		ThreatCategoryOrganizational,
		ThreatCategoryLegal,
		ThreatCategoryPhysical,
		ThreatCategoryReputational,
		ThreatCategoryTechnical,
	}
}

// IsValid checks if the threat category is in the closed set
func (c ThreatCategory) IsValid() bool {
	switch c {
	case ThreatCategoryNatural,
		ThreatCategoryCyber,
		ThreatCategoryHardware,
		ThreatCategoryHuman,
		ThreatCategoryOrganizational,
		ThreatCategoryLegal,
		ThreatCategoryPhysical,
		ThreatCategoryReputational,
		ThreatCategoryTechnical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the threat category
func (c ThreatCategory) String() string {
	return string(c)
}

// Label returns the display name of the category
func (c ThreatCategory) Label() string {
	switch c {
	case ThreatCategoryNatural:
		return "Naturali/Ambientali"
	case ThreatCategoryCyber:
		return "Cyber/Tecniche"
	case ThreatCategoryHardware:
		return "Hardware/Infrastruttura"
	case ThreatCategoryHuman:
		return "Umane"
	case ThreatCategoryOrganizational:
		return "Organizzative"
	case ThreatCategoryLegal:
		return "Legali/Compliance"
	case ThreatCategoryPhysical:
		return "Fisiche"
	case ThreatCategoryReputational:
		return "Reputazionali"
	case ThreatCategoryTechnical:
		return "Tecniche"
	default:
		return string(c)
	}
}

// ParseThreatCategory parses a string into a ThreatCategory
func ParseThreatCategory(s string) (ThreatCategory, error) {
	c := ThreatCategory(s)
	if !c.IsValid() {
		return "", goerr.New("invalid threat category", goerr.V("category", s))
	}
	return c, nil
}

// NIS2IncidentType tags a threat with the NIS2 incident class it may cause.
// The empty value means the threat has not been tagged.
type NIS2IncidentType string

const (
	NIS2Availability    NIS2IncidentType = "AVAILABILITY"
	NIS2Confidentiality NIS2IncidentType = "CONFIDENTIALITY"
	NIS2Integrity       NIS2IncidentType = "INTEGRITY"
	NIS2NotApplicable   NIS2IncidentType = "NOT_APPLICABLE"
)

// IsValid checks if the NIS2 type is empty or one of the known values
func (n NIS2IncidentType) IsValid() bool {
	switch n {
	case "", NIS2Availability, NIS2Confidentiality, NIS2Integrity, NIS2NotApplicable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the NIS2 incident type
func (n NIS2IncidentType) String() string {
	return string(n)
}

// ParseNIS2IncidentType parses a string into a NIS2IncidentType
func ParseNIS2IncidentType(s string) (NIS2IncidentType, error) {
	n := NIS2IncidentType(s)
	if !n.IsValid() {
		return "", goerr.New("invalid NIS2 incident type", goerr.V("nis2_type", s))
	}
	return n, nil
}
