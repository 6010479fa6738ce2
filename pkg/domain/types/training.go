package types

import "fmt"

// TrainingType is the kind of training scheduled to treat a risk
type TrainingType string

const (
	TrainingTypeAwareness  TrainingType = "awareness"
	TrainingTypeTechnical  TrainingType = "technical"
	TrainingTypeCompliance TrainingType = "compliance"
	TrainingTypeOnboarding TrainingType = "onboarding"
)

// IsValid checks if the training type is valid
func (t TrainingType) IsValid() bool {
	switch t {
	case TrainingTypeAwareness, TrainingTypeTechnical, TrainingTypeCompliance, TrainingTypeOnboarding:
		return true
	default:
		return false
	}
}

// String returns the string representation of the training type
func (t TrainingType) String() string {
	return string(t)
}

// ParseTrainingType parses a string into a TrainingType
func ParseTrainingType(s string) (TrainingType, error) {
	t := TrainingType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid training type: %s", s)
	}
	return t, nil
}

// TrainingStatus is the lifecycle status of a training record
type TrainingStatus string

const (
	TrainingStatusPlanned   TrainingStatus = "planned"
	TrainingStatusCompleted TrainingStatus = "completed"
	TrainingStatusCancelled TrainingStatus = "cancelled"
)

// IsValid checks if the training status is valid
func (s TrainingStatus) IsValid() bool {
	switch s {
	case TrainingStatusPlanned, TrainingStatusCompleted, TrainingStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the training status
func (s TrainingStatus) String() string {
	return string(s)
}
