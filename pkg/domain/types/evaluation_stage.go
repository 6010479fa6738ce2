package types

// EvaluationStage is the step of the risk evaluation dialog
type EvaluationStage string

const (
	EvaluationStageAssessment EvaluationStage = "assessment"
	EvaluationStageTreatment  EvaluationStage = "treatment"
	EvaluationStageSummary    EvaluationStage = "summary"
)

// String returns the string representation of the evaluation stage
func (s EvaluationStage) String() string {
	return string(s)
}
