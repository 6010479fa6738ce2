package types

// SequenceKind selects the counter used to generate human readable codes
type SequenceKind string

const (
	SequenceCorrectiveAction  SequenceKind = "corrective_action"
	SequencePreventiveAction  SequenceKind = "preventive_action"
	SequenceImprovementAction SequenceKind = "improvement_action"
	SequenceAudit             SequenceKind = "audit"
)

// Prefix returns the code prefix of the sequence
func (k SequenceKind) Prefix() string {
	switch k {
	case SequenceCorrectiveAction:
		return "AC"
	case SequencePreventiveAction:
		return "AP"
	case SequenceImprovementAction:
		return "AM"
	case SequenceAudit:
		return "AUD"
	default:
		return "SEQ"
	}
}

// String returns the string representation of the sequence kind
func (k SequenceKind) String() string {
	return string(k)
}
