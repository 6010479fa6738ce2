package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

// ActionInput overrides the values seeded from the risk treatment. Nil and
// empty fields keep the seeded value.
type ActionInput struct {
	Type        types.ActionType
	Title       string
	Plan        string
	Responsible string
	TargetDate  *time.Time
	Cost        *float64
}

// TrainingInput is the training record form
type TrainingInput struct {
	Employee string
	Title    string
	Type     types.TrainingType
	Date     *time.Time
	Notes    string
}

type TaskUseCase struct {
	repo      interfaces.Repository
	committer *committer
	clock     func() time.Time
}

func NewTaskUseCase(repo interfaces.Repository, committer *committer, clock func() time.Time) *TaskUseCase {
	return &TaskUseCase{
		repo:      repo,
		committer: committer,
		clock:     clock,
	}
}

func (uc *TaskUseCase) persistedRisk(ctx context.Context, orgID string, riskID int64) (*model.Risk, error) {
	if riskID <= 0 {
		return nil, goerr.Wrap(model.ErrRiskNotPersisted, "risk must be saved before generating tasks")
	}

	risk, err := uc.repo.Risk().Get(ctx, orgID, riskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	return risk, nil
}

// CreateImprovementAction turns the treatment of a persisted risk into an
// improvement action. A failure to generate the sequential code is logged and
// the action is stored without code.
func (uc *TaskUseCase) CreateImprovementAction(ctx context.Context, riskID int64, input ActionInput) (*model.ImprovementAction, error) {
	if input.Type == "" {
		input.Type = types.ActionTypeCorrective
	}
	if !input.Type.IsValid() {
		return nil, goerr.Wrap(ErrInvalidTaskInput, "invalid action type", goerr.V("type", input.Type))
	}
	if input.Cost != nil && *input.Cost < 0 {
		return nil, goerr.Wrap(ErrInvalidTaskInput, "cost must not be negative", goerr.V("cost", *input.Cost))
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	risk, err := uc.persistedRisk(ctx, orgID, riskID)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	action := &model.ImprovementAction{
		Type:                  input.Type,
		Source:                model.ActionSourceRiskAssessment,
		SourceID:              risk.ID,
		Title:                 firstNonEmpty(input.Title, risk.Name),
		Plan:                  firstNonEmpty(input.Plan, risk.TreatmentDescription),
		Responsible:           firstNonEmpty(input.Responsible, risk.TreatmentResponsible),
		Cost:                  risk.TreatmentCost,
		ImplementationStatus:  types.ImplementationPlanned,
		EffectivenessVerified: false,
	}
	if input.Cost != nil {
		action.Cost = *input.Cost
	}

	switch {
	case input.TargetDate != nil:
		action.TargetDate = *input.TargetDate
	case risk.TreatmentDeadline != nil:
		action.TargetDate = *risk.TreatmentDeadline
	default:
		action.TargetDate = now.Add(model.DefaultActionLeadTime)
	}

	if action.Title == "" {
		return nil, goerr.Wrap(ErrInvalidTaskInput, "action title is required", goerr.V(RiskIDKey, riskID))
	}

	kind := input.Type.SequenceKind()
	if n, err := uc.repo.Sequence().Next(ctx, orgID, kind); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to generate action code",
			goerr.V("kind", kind), goerr.V(RiskIDKey, riskID)), "action saved without code")
	} else {
		action.Code = model.FormatSequenceCode(kind, n)
	}

	created, err := uc.repo.Action().Create(ctx, orgID, action)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create improvement action", goerr.V(RiskIDKey, riskID))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionCreate,
		After:          created,
		Notes:          fmt.Sprintf("generated from risk %d", risk.ID),
	})

	return created, nil
}

// CreateTrainingRecord plans a training session prompted by a persisted risk.
// The record refers to the risk in its notes only.
func (uc *TaskUseCase) CreateTrainingRecord(ctx context.Context, riskID int64, input TrainingInput) (*model.TrainingRecord, error) {
	if strings.TrimSpace(input.Employee) == "" {
		return nil, goerr.Wrap(ErrInvalidTaskInput, "employee is required")
	}
	if input.Type == "" {
		input.Type = types.TrainingTypeAwareness
	}
	if !input.Type.IsValid() {
		return nil, goerr.Wrap(ErrInvalidTaskInput, "invalid training type", goerr.V("type", input.Type))
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	risk, err := uc.persistedRisk(ctx, orgID, riskID)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("Risk #%d: %s", risk.ID, risk.Name)
	notes := reference
	if n := strings.TrimSpace(input.Notes); n != "" {
		notes = reference + "\n" + n
	}

	record := &model.TrainingRecord{
		Employee:          strings.TrimSpace(input.Employee),
		Title:             firstNonEmpty(input.Title, risk.Name),
		Type:              input.Type,
		Date:              truncateToDay(uc.clock()),
		Notes:             notes,
		Status:            types.TrainingStatusPlanned,
		CertificateIssued: false,
	}
	if input.Date != nil {
		record.Date = *input.Date
	}

	created, err := uc.repo.Training().Create(ctx, orgID, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create training record", goerr.V(RiskIDKey, riskID))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionCreate,
		After:          created,
		Notes:          reference,
	})

	return created, nil
}

// ListActionsByRisk returns the improvement actions generated from a risk
func (uc *TaskUseCase) ListActionsByRisk(ctx context.Context, riskID int64) ([]*model.ImprovementAction, error) {
	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := uc.repo.Action().ListBySource(ctx, orgID, model.ActionSourceRiskAssessment, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions of risk", goerr.V(RiskIDKey, riskID))
	}
	return actions, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
