package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/scoring"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// EvaluationStage is the current step of an evaluation session. The concrete
// types form a closed set: AssessmentStage, TreatmentStage and SummaryStage.
type EvaluationStage interface {
	Name() types.EvaluationStage
	evaluationStage()
}

// AssessmentStage collects the inherent probability and impact ratings
type AssessmentStage struct{}

// TreatmentStage collects controls, residual ratings and the treatment plan
type TreatmentStage struct{}

// SummaryStage shows the final evaluation. Saved is set once the full save
// succeeded so that downstream tasks can be generated.
type SummaryStage struct {
	Saved bool
}

func (AssessmentStage) Name() types.EvaluationStage { return types.EvaluationStageAssessment }
func (TreatmentStage) Name() types.EvaluationStage  { return types.EvaluationStageTreatment }
func (SummaryStage) Name() types.EvaluationStage    { return types.EvaluationStageSummary }

func (AssessmentStage) evaluationStage() {}
func (TreatmentStage) evaluationStage()  {}
func (SummaryStage) evaluationStage()    {}

// Assessment holds the inherent ratings draft
type Assessment struct {
	Probability       types.Rating
	ImpactOperational types.Rating
	ImpactEconomic    types.Rating
	ImpactLegal       types.Rating
}

// Validate checks every rating is unset or within range
func (a Assessment) Validate() error {
	ratings := map[string]types.Rating{
		"probability":        a.Probability,
		"impact_operational": a.ImpactOperational,
		"impact_economic":    a.ImpactEconomic,
		"impact_legal":       a.ImpactLegal,
	}
	for field, r := range ratings {
		if !r.IsValid() {
			return goerr.Wrap(ErrInvalidRating, "invalid assessment rating",
				goerr.V(FieldKey, field), goerr.V(RatingKey, int(r)))
		}
	}
	return nil
}

// IsComplete reports whether probability and all three impact dimensions are set
func (a Assessment) IsComplete() bool {
	return a.Probability.IsSet() &&
		a.ImpactOperational.IsSet() &&
		a.ImpactEconomic.IsSet() &&
		a.ImpactLegal.IsSet()
}

// Treatment holds the treatment draft
type Treatment struct {
	SelectedControls    []string
	ResidualProbability types.Rating
	ResidualImpact      types.Rating
	Strategy            types.TreatmentStrategy
	Description         string
	Cost                float64
	Deadline            *time.Time
	Responsible         string
}

// Validate checks ratings, strategy and cost
func (t Treatment) Validate() error {
	if !t.ResidualProbability.IsValid() {
		return goerr.Wrap(ErrInvalidRating, "invalid residual probability",
			goerr.V(FieldKey, "residual_probability"), goerr.V(RatingKey, int(t.ResidualProbability)))
	}
	if !t.ResidualImpact.IsValid() {
		return goerr.Wrap(ErrInvalidRating, "invalid residual impact",
			goerr.V(FieldKey, "residual_impact"), goerr.V(RatingKey, int(t.ResidualImpact)))
	}
	if !t.Strategy.IsValid() {
		return goerr.Wrap(ErrInvalidTreatment, "invalid treatment strategy", goerr.V("strategy", t.Strategy))
	}
	if t.Cost < 0 || math.IsNaN(t.Cost) || math.IsInf(t.Cost, 0) {
		return goerr.Wrap(ErrInvalidTreatment, "treatment cost must be a non-negative number", goerr.V("cost", t.Cost))
	}
	for _, ref := range t.SelectedControls {
		if strings.TrimSpace(ref) == "" {
			return goerr.Wrap(ErrInvalidTreatment, "control reference cannot be empty")
		}
	}
	return nil
}

// IsComplete reports whether a control is selected and both residual ratings are set
func (t Treatment) IsComplete() bool {
	return len(t.SelectedControls) > 0 && t.ResidualProbability.IsSet() && t.ResidualImpact.IsSet()
}

// EvaluationSession is the in-progress evaluation of one risk. It lives only as
// long as the dialog that drives it; nothing is persisted until a save.
type EvaluationSession struct {
	ID string

	ThreatID            types.ThreatID
	Name                string
	Description         string
	RecommendedControls []string
	AssetID             string

	Assessment Assessment
	Treatment  Treatment

	stage  EvaluationStage
	risk   *Risk // last persisted state, nil until the first save
	closed bool
}

// NewEvaluationSession starts the evaluation of a threat
func NewEvaluationSession(threat *Threat, assetID string) *EvaluationSession {
	s := &EvaluationSession{
		ID:                  uuid.NewString(),
		ThreatID:            threat.ID,
		Name:                threat.Name,
		Description:         threat.Description,
		RecommendedControls: append([]string{}, threat.RecommendedControls...),
		AssetID:             assetID,
		stage:               AssessmentStage{},
	}
	s.Assessment.Probability = threat.BaselineProbability
	return s
}

// NewEditSession reopens a persisted risk. When the individual impact ratings
// were not persisted, all three dimensions are loaded with the combined
// inherent impact because the dimension that drove the max is unknown.
func NewEditSession(risk *Risk, recommendedControls []string) *EvaluationSession {
	s := &EvaluationSession{
		ID:                  uuid.NewString(),
		ThreatID:            risk.ThreatID,
		Name:                risk.Name,
		Description:         risk.Description,
		RecommendedControls: append([]string{}, recommendedControls...),
		AssetID:             risk.AssetID,
		stage:               AssessmentStage{},
		risk:                risk,
	}

	s.Assessment.Probability = risk.InherentProbability
	if risk.HasImpactDimensions() {
		s.Assessment.ImpactOperational = risk.ImpactOperational
		s.Assessment.ImpactEconomic = risk.ImpactEconomic
		s.Assessment.ImpactLegal = risk.ImpactLegal
	} else {
		s.Assessment.ImpactOperational = risk.InherentImpact
		s.Assessment.ImpactEconomic = risk.InherentImpact
		s.Assessment.ImpactLegal = risk.InherentImpact
	}

	s.Treatment = Treatment{
		SelectedControls:    append([]string{}, risk.RelatedControls...),
		ResidualProbability: risk.ResidualProbability,
		ResidualImpact:      risk.ResidualImpact,
		Strategy:            risk.TreatmentStrategy,
		Description:         risk.TreatmentDescription,
		Cost:                risk.TreatmentCost,
		Deadline:            risk.TreatmentDeadline,
		Responsible:         risk.TreatmentResponsible,
	}

	return s
}

// Stage returns the current stage
func (s *EvaluationSession) Stage() EvaluationStage {
	return s.stage
}

// Risk returns the last persisted state of the risk, nil before the first save
func (s *EvaluationSession) Risk() *Risk {
	return s.risk
}

// IsEditing reports whether saves update an existing risk
func (s *EvaluationSession) IsEditing() bool {
	return s.risk != nil && s.risk.ID != 0
}

// IsClosed reports whether the session was closed by a save or by the operator
func (s *EvaluationSession) IsClosed() bool {
	return s.closed
}

// SetAssessment replaces the assessment draft
func (s *EvaluationSession) SetAssessment(a Assessment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.Assessment = a
	return nil
}

// SetTreatment replaces the treatment draft
func (s *EvaluationSession) SetTreatment(t Treatment) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.SelectedControls = uniqueStrings(t.SelectedControls)
	s.Treatment = t
	return nil
}

// Advance moves to the next stage when its guard holds. It performs no I/O.
func (s *EvaluationSession) Advance() error {
	switch s.stage.(type) {
	case AssessmentStage:
		if !s.Assessment.IsComplete() {
			return goerr.Wrap(ErrStageGuard, "probability and all three impact dimensions are required",
				goerr.V(StageKey, s.stage.Name()))
		}
		s.stage = TreatmentStage{}
	case TreatmentStage:
		if !s.Treatment.IsComplete() {
			return goerr.Wrap(ErrStageGuard, "at least one control and both residual ratings are required",
				goerr.V(StageKey, s.stage.Name()))
		}
		s.stage = SummaryStage{}
	default:
		return goerr.Wrap(ErrStageGuard, "summary is the last stage", goerr.V(StageKey, s.stage.Name()))
	}
	return nil
}

// Back returns to the previous stage keeping every draft field
func (s *EvaluationSession) Back() {
	switch s.stage.(type) {
	case TreatmentStage:
		s.stage = AssessmentStage{}
	case SummaryStage:
		s.stage = TreatmentStage{}
	}
}

// CanQuickSave reports whether a quick save is available in the current stage
func (s *EvaluationSession) CanQuickSave() bool {
	switch s.stage.(type) {
	case AssessmentStage, TreatmentStage:
		return true
	default:
		return false
	}
}

// CanFullSave reports whether a full save is available in the current stage
func (s *EvaluationSession) CanFullSave() bool {
	_, ok := s.stage.(SummaryStage)
	return ok
}

// BuildRisk computes every derivable score and the status from the drafts.
// Inherent and residual groups are either fully set or left empty.
func (s *EvaluationSession) BuildRisk(organizationID string) *Risk {
	risk := &Risk{
		OrganizationID:       organizationID,
		Type:                 types.RiskTypeScenario,
		ThreatID:             s.ThreatID,
		Name:                 s.Name,
		Description:          s.Description,
		AssetID:              s.AssetID,
		InherentProbability:  s.Assessment.Probability,
		ImpactOperational:    s.Assessment.ImpactOperational,
		ImpactEconomic:       s.Assessment.ImpactEconomic,
		ImpactLegal:          s.Assessment.ImpactLegal,
		TreatmentStrategy:    s.Treatment.Strategy,
		TreatmentDescription: s.Treatment.Description,
		TreatmentCost:        s.Treatment.Cost,
		TreatmentDeadline:    s.Treatment.Deadline,
		TreatmentResponsible: s.Treatment.Responsible,
		RelatedControls:      append([]string{}, s.Treatment.SelectedControls...),
	}
	if s.AssetID != "" {
		risk.Type = types.RiskTypeAsset
	}

	if score, impact, ok := scoring.InherentScore(
		s.Assessment.Probability,
		s.Assessment.ImpactOperational,
		s.Assessment.ImpactEconomic,
		s.Assessment.ImpactLegal,
	); ok {
		risk.InherentImpact = impact
		risk.InherentScore = score
		risk.InherentLevel = scoring.Classify(score)
	}

	if score, ok := scoring.ResidualScore(s.Treatment.ResidualProbability, s.Treatment.ResidualImpact); ok {
		risk.ResidualProbability = s.Treatment.ResidualProbability
		risk.ResidualImpact = s.Treatment.ResidualImpact
		risk.ResidualScore = score
		risk.ResidualLevel = scoring.Classify(score)
	}

	risk.Status = DeriveStatus(risk.Snapshot())

	if s.risk != nil {
		risk.ID = s.risk.ID
		risk.OrganizationID = s.risk.OrganizationID
		risk.CreatedAt = s.risk.CreatedAt
	}

	return risk
}

// Committed records a successful save. A quick save from the assessment stage
// closes the session; a full save marks the summary as saved.
func (s *EvaluationSession) Committed(risk *Risk, quickSave bool) {
	s.risk = risk
	if quickSave {
		if _, ok := s.stage.(AssessmentStage); ok {
			s.Close()
		}
		return
	}
	s.stage = SummaryStage{Saved: true}
}

// Close abandons the session. Unsaved drafts are discarded.
func (s *EvaluationSession) Close() {
	s.Assessment = Assessment{}
	s.Treatment = Treatment{}
	s.stage = AssessmentStage{}
	s.closed = true
}

// EvaluationSummary is the read model of the summary stage
type EvaluationSummary struct {
	InherentScore       int
	InherentLevel       types.RiskLevel
	ResidualScore       int
	ResidualLevel       types.RiskLevel
	ReductionPercentage float64
	HasReduction        bool
	Status              types.RiskStatus
}

// Summary computes the scores of the current drafts without persisting them
func (s *EvaluationSession) Summary() EvaluationSummary {
	risk := s.BuildRisk("")
	summary := EvaluationSummary{
		InherentScore: risk.InherentScore,
		InherentLevel: risk.InherentLevel,
		ResidualScore: risk.ResidualScore,
		ResidualLevel: risk.ResidualLevel,
		Status:        risk.Status,
	}
	summary.ReductionPercentage, summary.HasReduction = risk.ReductionPercentage()
	return summary
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
