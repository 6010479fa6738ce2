package types

import "fmt"

// RiskStatus is the lifecycle status of a risk. It is always derived from the
// risk content and never set by hand.
type RiskStatus string

const (
	RiskStatusIdentified  RiskStatus = "Identificato"
	RiskStatusEvaluated   RiskStatus = "Valutato"
	RiskStatusInTreatment RiskStatus = "In trattamento"
)

// AllRiskStatuses returns all valid risk statuses
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusIdentified,
		RiskStatusEvaluated,
		RiskStatusInTreatment,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusIdentified, RiskStatusEvaluated, RiskStatusInTreatment:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
