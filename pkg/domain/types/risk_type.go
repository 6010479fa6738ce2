package types

import "fmt"

// RiskType tells where a risk comes from
type RiskType string

const (
	// RiskTypeScenario is a risk derived from the threat library
	RiskTypeScenario RiskType = "scenario"
	// RiskTypeAsset is a risk evaluated against a specific asset
	RiskTypeAsset RiskType = "asset"
)

// IsValid checks if the risk type is valid
func (t RiskType) IsValid() bool {
	switch t {
	case RiskTypeScenario, RiskTypeAsset:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk type
func (t RiskType) String() string {
	return string(t)
}

// TreatmentStrategy is the ISO 27005 risk treatment option
type TreatmentStrategy string

const (
	TreatmentMitigate TreatmentStrategy = "mitigate"
	TreatmentAccept   TreatmentStrategy = "accept"
	TreatmentTransfer TreatmentStrategy = "transfer"
	TreatmentAvoid    TreatmentStrategy = "avoid"
)

// IsValid checks if the strategy is empty or one of the known options
func (s TreatmentStrategy) IsValid() bool {
	switch s {
	case "", TreatmentMitigate, TreatmentAccept, TreatmentTransfer, TreatmentAvoid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment strategy
func (s TreatmentStrategy) String() string {
	return string(s)
}

// ParseTreatmentStrategy parses a string into a TreatmentStrategy
func ParseTreatmentStrategy(s string) (TreatmentStrategy, error) {
	strategy := TreatmentStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid treatment strategy: %s", s)
	}
	return strategy, nil
}
