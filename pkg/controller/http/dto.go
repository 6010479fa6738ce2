package http

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type threatRequest struct {
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	Category            types.ThreatCategory   `json:"category"`
	NIS2Type            types.NIS2IncidentType `json:"nis2_type"`
	BaselineProbability types.Rating           `json:"baseline_probability"`
	BaselineImpact      types.Rating           `json:"baseline_impact"`
	RecommendedControls []string               `json:"recommended_controls"`
	Sectors             []string               `json:"sectors"`
}

func (req threatRequest) input() usecase.ThreatInput {
	return usecase.ThreatInput{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		NIS2Type:            req.NIS2Type,
		BaselineProbability: req.BaselineProbability,
		BaselineImpact:      req.BaselineImpact,
		RecommendedControls: req.RecommendedControls,
		Sectors:             req.Sectors,
	}
}

type threatResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Category            string   `json:"category"`
	CategoryLabel       string   `json:"category_label"`
	NIS2Type            string   `json:"nis2_type,omitempty"`
	BaselineProbability int      `json:"baseline_probability,omitempty"`
	BaselineImpact      int      `json:"baseline_impact,omitempty"`
	RecommendedControls []string `json:"recommended_controls"`
	Sectors             []string `json:"sectors"`
	IsCustom            bool     `json:"is_custom"`
}

func toThreatResponse(t *model.Threat) threatResponse {
	return threatResponse{
		ID:                  t.ID.String(),
		Name:                t.Name,
		Description:         t.Description,
		Category:            t.Category.String(),
		CategoryLabel:       t.Category.Label(),
		NIS2Type:            t.NIS2Type.String(),
		BaselineProbability: t.BaselineProbability.Int(),
		BaselineImpact:      t.BaselineImpact.Int(),
		RecommendedControls: nonNil(t.RecommendedControls),
		Sectors:             nonNil(t.Sectors),
		IsCustom:            t.IsCustom,
	}
}

type riskResponse struct {
	ID                   int64    `json:"id"`
	Type                 string   `json:"type"`
	ThreatID             string   `json:"threat_id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	AssetID              string   `json:"asset_id,omitempty"`
	InherentProbability  int      `json:"inherent_probability,omitempty"`
	ImpactOperational    int      `json:"impact_operational,omitempty"`
	ImpactEconomic       int      `json:"impact_economic,omitempty"`
	ImpactLegal          int      `json:"impact_legal,omitempty"`
	InherentImpact       int      `json:"inherent_impact,omitempty"`
	InherentScore        int      `json:"inherent_score,omitempty"`
	InherentLevel        string   `json:"inherent_level,omitempty"`
	ResidualProbability  int      `json:"residual_probability,omitempty"`
	ResidualImpact       int      `json:"residual_impact,omitempty"`
	ResidualScore        int      `json:"residual_score,omitempty"`
	ResidualLevel        string   `json:"residual_level,omitempty"`
	ReductionPercentage  *float64 `json:"reduction_percentage,omitempty"`
	TreatmentStrategy    string   `json:"treatment_strategy,omitempty"`
	TreatmentDescription string   `json:"treatment_description,omitempty"`
	TreatmentCost        float64  `json:"treatment_cost,omitempty"`
	TreatmentDeadline    string   `json:"treatment_deadline,omitempty"`
	TreatmentResponsible string   `json:"treatment_responsible,omitempty"`
	RelatedControls      []string `json:"related_controls"`
	Status               string   `json:"status"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

func toRiskResponse(r *model.Risk) riskResponse {
	resp := riskResponse{
		ID:                   r.ID,
		Type:                 r.Type.String(),
		ThreatID:             r.ThreatID.String(),
		Name:                 r.Name,
		Description:          r.Description,
		AssetID:              r.AssetID,
		InherentProbability:  r.InherentProbability.Int(),
		ImpactOperational:    r.ImpactOperational.Int(),
		ImpactEconomic:       r.ImpactEconomic.Int(),
		ImpactLegal:          r.ImpactLegal.Int(),
		InherentImpact:       r.InherentImpact.Int(),
		InherentScore:        r.InherentScore,
		InherentLevel:        r.InherentLevel.String(),
		ResidualProbability:  r.ResidualProbability.Int(),
		ResidualImpact:       r.ResidualImpact.Int(),
		ResidualScore:        r.ResidualScore,
		ResidualLevel:        r.ResidualLevel.String(),
		TreatmentStrategy:    r.TreatmentStrategy.String(),
		TreatmentDescription: r.TreatmentDescription,
		TreatmentCost:        r.TreatmentCost,
		TreatmentDeadline:    formatDate(r.TreatmentDeadline),
		TreatmentResponsible: r.TreatmentResponsible,
		RelatedControls:      nonNil(r.RelatedControls),
		Status:               r.Status.String(),
		CreatedAt:            r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            r.UpdatedAt.Format(time.RFC3339),
	}
	if pct, ok := r.ReductionPercentage(); ok {
		resp.ReductionPercentage = &pct
	}
	return resp
}

type startEvaluationRequest struct {
	ThreatID types.ThreatID `json:"threat_id"`
	AssetID  string         `json:"asset_id"`
}

type assessmentRequest struct {
	Probability       types.Rating `json:"probability"`
	ImpactOperational types.Rating `json:"impact_operational"`
	ImpactEconomic    types.Rating `json:"impact_economic"`
	ImpactLegal       types.Rating `json:"impact_legal"`
}

type treatmentRequest struct {
	SelectedControls    []string                `json:"selected_controls"`
	ResidualProbability types.Rating            `json:"residual_probability"`
	ResidualImpact      types.Rating            `json:"residual_impact"`
	Strategy            types.TreatmentStrategy `json:"strategy"`
	Description         string                  `json:"description"`
	Cost                float64                 `json:"cost"`
	Deadline            string                  `json:"deadline"`
	Responsible         string                  `json:"responsible"`
}

func (req treatmentRequest) treatment() (model.Treatment, error) {
	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		return model.Treatment{}, err
	}
	return model.Treatment{
		SelectedControls:    req.SelectedControls,
		ResidualProbability: req.ResidualProbability,
		ResidualImpact:      req.ResidualImpact,
		Strategy:            req.Strategy,
		Description:         req.Description,
		Cost:                req.Cost,
		Deadline:            deadline,
		Responsible:         req.Responsible,
	}, nil
}

type saveRequest struct {
	QuickSave bool `json:"quick_save"`
}

type summaryResponse struct {
	InherentScore       int      `json:"inherent_score,omitempty"`
	InherentLevel       string   `json:"inherent_level,omitempty"`
	ResidualScore       int      `json:"residual_score,omitempty"`
	ResidualLevel       string   `json:"residual_level,omitempty"`
	ReductionPercentage *float64 `json:"reduction_percentage,omitempty"`
	Status              string   `json:"status"`
}

type sessionResponse struct {
	ID                  string            `json:"id"`
	ThreatID            string            `json:"threat_id"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	RecommendedControls []string          `json:"recommended_controls"`
	AssetID             string            `json:"asset_id,omitempty"`
	Stage               string            `json:"stage"`
	Saved               bool              `json:"saved"`
	Closed              bool              `json:"closed"`
	RiskID              int64             `json:"risk_id,omitempty"`
	CanQuickSave        bool              `json:"can_quick_save"`
	CanFullSave         bool              `json:"can_full_save"`
	Assessment          assessmentRequest `json:"assessment"`
	Treatment           treatmentRequest  `json:"treatment"`
	Summary             summaryResponse   `json:"summary"`
}

func toSessionResponse(s *model.EvaluationSession) sessionResponse {
	resp := sessionResponse{
		ID:                  s.ID,
		ThreatID:            s.ThreatID.String(),
		Name:                s.Name,
		Description:         s.Description,
		RecommendedControls: nonNil(s.RecommendedControls),
		AssetID:             s.AssetID,
		Stage:               s.Stage().Name().String(),
		Closed:              s.IsClosed(),
		CanQuickSave:        !s.IsClosed() && s.CanQuickSave(),
		CanFullSave:         !s.IsClosed() && s.CanFullSave(),
		Assessment: assessmentRequest{
			Probability:       s.Assessment.Probability,
			ImpactOperational: s.Assessment.ImpactOperational,
			ImpactEconomic:    s.Assessment.ImpactEconomic,
			ImpactLegal:       s.Assessment.ImpactLegal,
		},
		Treatment: treatmentRequest{
			SelectedControls:    nonNil(s.Treatment.SelectedControls),
			ResidualProbability: s.Treatment.ResidualProbability,
			ResidualImpact:      s.Treatment.ResidualImpact,
			Strategy:            s.Treatment.Strategy,
			Description:         s.Treatment.Description,
			Cost:                s.Treatment.Cost,
			Deadline:            formatDate(s.Treatment.Deadline),
			Responsible:         s.Treatment.Responsible,
		},
	}
	if stage, ok := s.Stage().(model.SummaryStage); ok {
		resp.Saved = stage.Saved
	}
	if risk := s.Risk(); risk != nil {
		resp.RiskID = risk.ID
	}

	summary := s.Summary()
	resp.Summary = summaryResponse{
		InherentScore: summary.InherentScore,
		InherentLevel: summary.InherentLevel.String(),
		ResidualScore: summary.ResidualScore,
		ResidualLevel: summary.ResidualLevel.String(),
		Status:        summary.Status.String(),
	}
	if summary.HasReduction {
		pct := summary.ReductionPercentage
		resp.Summary.ReductionPercentage = &pct
	}
	return resp
}

type saveResponse struct {
	Risk    riskResponse    `json:"risk"`
	Session sessionResponse `json:"session"`
}

type referencesResponse struct {
	ThreatID  string `json:"threat_id"`
	RiskCount int    `json:"risk_count"`
}

type actionRequest struct {
	Type        types.ActionType `json:"type"`
	Title       string           `json:"title"`
	Plan        string           `json:"plan"`
	Responsible string           `json:"responsible"`
	TargetDate  string           `json:"target_date"`
	Cost        *float64         `json:"cost"`
}

func (req actionRequest) input() (usecase.ActionInput, error) {
	target, err := parseDate("target_date", req.TargetDate)
	if err != nil {
		return usecase.ActionInput{}, err
	}
	return usecase.ActionInput{
		Type:        req.Type,
		Title:       req.Title,
		Plan:        req.Plan,
		Responsible: req.Responsible,
		TargetDate:  target,
		Cost:        req.Cost,
	}, nil
}

type actionResponse struct {
	ID                    int64   `json:"id"`
	Code                  string  `json:"code,omitempty"`
	Type                  string  `json:"type"`
	Source                string  `json:"source"`
	SourceID              int64   `json:"source_id"`
	Title                 string  `json:"title"`
	Plan                  string  `json:"plan"`
	Responsible           string  `json:"responsible"`
	TargetDate            string  `json:"target_date"`
	Cost                  float64 `json:"cost"`
	ImplementationStatus  string  `json:"implementation_status"`
	EffectivenessVerified bool    `json:"effectiveness_verified"`
}

func toActionResponse(a *model.ImprovementAction) actionResponse {
	return actionResponse{
		ID:                    a.ID,
		Code:                  a.Code,
		Type:                  a.Type.String(),
		Source:                a.Source,
		SourceID:              a.SourceID,
		Title:                 a.Title,
		Plan:                  a.Plan,
		Responsible:           a.Responsible,
		TargetDate:            formatDate(&a.TargetDate),
		Cost:                  a.Cost,
		ImplementationStatus:  a.ImplementationStatus.String(),
		EffectivenessVerified: a.EffectivenessVerified,
	}
}

type trainingRequest struct {
	Employee string             `json:"employee"`
	Title    string             `json:"title"`
	Type     types.TrainingType `json:"type"`
	Date     string             `json:"date"`
	Notes    string             `json:"notes"`
}

func (req trainingRequest) input() (usecase.TrainingInput, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return usecase.TrainingInput{}, err
	}
	return usecase.TrainingInput{
		Employee: req.Employee,
		Title:    req.Title,
		Type:     req.Type,
		Date:     date,
		Notes:    req.Notes,
	}, nil
}

type trainingResponse struct {
	ID                int64  `json:"id"`
	Employee          string `json:"employee"`
	Title             string `json:"title"`
	Type              string `json:"type"`
	Date              string `json:"date"`
	Notes             string `json:"notes"`
	Status            string `json:"status"`
	CertificateIssued bool   `json:"certificate_issued"`
}

func toTrainingResponse(r *model.TrainingRecord) trainingResponse {
	return trainingResponse{
		ID:                r.ID,
		Employee:          r.Employee,
		Title:             r.Title,
		Type:              r.Type.String(),
		Date:              formatDate(&r.Date),
		Notes:             r.Notes,
		Status:            r.Status.String(),
		CertificateIssued: r.CertificateIssued,
	}
}

type controlResponse struct {
	Reference      string `json:"reference"`
	Name           string `json:"name,omitempty"`
	LastVerifiedAt string `json:"last_verified_at,omitempty"`
}

type nonConformityResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	RelatedControl string `json:"related_control,omitempty"`
}

type suggestionTotals struct {
	ControlsToVerify        int `json:"controls_to_verify"`
	HighRisksUnverified     int `json:"high_risks_unverified"`
	NonConformitiesToVerify int `json:"non_conformities_to_verify"`
}

type suggestionResponse struct {
	EvaluatedAt             string                  `json:"evaluated_at"`
	DisplayLimit            int                     `json:"display_limit"`
	ControlsToVerify        []controlResponse       `json:"controls_to_verify"`
	HighRisksUnverified     []riskResponse          `json:"high_risks_unverified"`
	NonConformitiesToVerify []nonConformityResponse `json:"non_conformities_to_verify"`
	Totals                  suggestionTotals        `json:"totals"`
	ControlScope            []string                `json:"control_scope"`
}

func toSuggestionResponse(bundle *model.SuggestionBundle, limit int) suggestionResponse {
	display := bundle.Display(limit)
	resp := suggestionResponse{
		EvaluatedAt:             bundle.EvaluatedAt.Format(time.RFC3339),
		DisplayLimit:            limit,
		ControlsToVerify:        make([]controlResponse, 0, len(display.ControlsToVerify)),
		HighRisksUnverified:     make([]riskResponse, 0, len(display.HighRisksUnverified)),
		NonConformitiesToVerify: make([]nonConformityResponse, 0, len(display.NonConformitiesToVerify)),
		Totals: suggestionTotals{
			ControlsToVerify:        len(bundle.ControlsToVerify),
			HighRisksUnverified:     len(bundle.HighRisksUnverified),
			NonConformitiesToVerify: len(bundle.NonConformitiesToVerify),
		},
		ControlScope: bundle.ControlScope(),
	}

	for _, c := range display.ControlsToVerify {
		resp.ControlsToVerify = append(resp.ControlsToVerify, controlResponse{
			Reference:      c.Reference,
			Name:           c.Name,
			LastVerifiedAt: formatDate(c.LastVerifiedAt),
		})
	}
	for _, r := range display.HighRisksUnverified {
		resp.HighRisksUnverified = append(resp.HighRisksUnverified, toRiskResponse(r))
	}
	for _, nc := range display.NonConformitiesToVerify {
		resp.NonConformitiesToVerify = append(resp.NonConformitiesToVerify, nonConformityResponse{
			ID:             nc.ID,
			Title:          nc.Title,
			RelatedControl: nc.RelatedControl,
		})
	}
	return resp
}

type auditRequest struct {
	Title       string `json:"title"`
	PlannedDate string `json:"planned_date"`
}

type auditResponse struct {
	ID           int64    `json:"id"`
	Code         string   `json:"code,omitempty"`
	Title        string   `json:"title"`
	ControlScope []string `json:"control_scope"`
	PlannedDate  string   `json:"planned_date,omitempty"`
	Status       string   `json:"status"`
}

func toAuditResponse(a *model.Audit) auditResponse {
	return auditResponse{
		ID:           a.ID,
		Code:         a.Code,
		Title:        a.Title,
		ControlScope: nonNil(a.ControlScope),
		PlannedDate:  formatDate(a.PlannedDate),
		Status:       a.Status.String(),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
