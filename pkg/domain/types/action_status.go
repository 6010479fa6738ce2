package types

import "fmt"

// ActionType is the kind of improvement action generated from a risk treatment
type ActionType string

const (
	ActionTypeCorrective  ActionType = "corrective"
	ActionTypePreventive  ActionType = "preventive"
	ActionTypeImprovement ActionType = "improvement"
)

// AllActionTypes returns all valid action types
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionTypeCorrective,
		ActionTypePreventive,
		ActionTypeImprovement,
	}
}

// IsValid checks if the action type is valid
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeCorrective, ActionTypePreventive, ActionTypeImprovement:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (t ActionType) String() string {
	return string(t)
}

// SequenceKind returns the code sequence used for actions of this type
func (t ActionType) SequenceKind() SequenceKind {
	switch t {
	case ActionTypeCorrective:
		return SequenceCorrectiveAction
	case ActionTypePreventive:
		return SequencePreventiveAction
	default:
		return SequenceImprovementAction
	}
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}

// ImplementationStatus is shared by controls and improvement actions
type ImplementationStatus string

const (
	ImplementationNotImplemented ImplementationStatus = "not_implemented"
	ImplementationPlanned        ImplementationStatus = "planned"
	ImplementationInProgress     ImplementationStatus = "in_progress"
	ImplementationImplemented    ImplementationStatus = "implemented"
)

// AllImplementationStatuses returns all valid implementation statuses
func AllImplementationStatuses() []ImplementationStatus {
	return []ImplementationStatus{
		ImplementationNotImplemented,
		ImplementationPlanned,
		ImplementationInProgress,
		ImplementationImplemented,
	}
}

// IsValid checks if the implementation status is valid
func (s ImplementationStatus) IsValid() bool {
	switch s {
	case ImplementationNotImplemented,
		ImplementationPlanned,
		ImplementationInProgress,
		ImplementationImplemented:
		return true
	default:
		return false
	}
}

// String returns the string representation of the implementation status
func (s ImplementationStatus) String() string {
	return string(s)
}

// ParseImplementationStatus parses a string into an ImplementationStatus
func ParseImplementationStatus(s string) (ImplementationStatus, error) {
	status := ImplementationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid implementation status: %s", s)
	}
	return status, nil
}

// CorrectiveActionStatus is the remediation progress of a non-conformity
type CorrectiveActionStatus string

const (
	CorrectiveActionOpen       CorrectiveActionStatus = "open"
	CorrectiveActionInProgress CorrectiveActionStatus = "in_progress"
	CorrectiveActionCompleted  CorrectiveActionStatus = "completed"
)

// IsValid checks if the corrective action status is valid
func (s CorrectiveActionStatus) IsValid() bool {
	switch s {
	case CorrectiveActionOpen, CorrectiveActionInProgress, CorrectiveActionCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the corrective action status
func (s CorrectiveActionStatus) String() string {
	return string(s)
}
