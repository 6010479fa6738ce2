package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

type EvaluationUseCase struct {
	repo      interfaces.Repository
	committer *committer
}

func NewEvaluationUseCase(repo interfaces.Repository, committer *committer) *EvaluationUseCase {
	return &EvaluationUseCase{
		repo:      repo,
		committer: committer,
	}
}

// StartEvaluation opens a session for a new risk derived from a threat. An
// asset ID makes it an asset specific risk.
func (uc *EvaluationUseCase) StartEvaluation(ctx context.Context, threatID types.ThreatID, assetID string) (*model.EvaluationSession, error) {
	if threatID == "" {
		return nil, goerr.Wrap(ErrThreatRequired, "no threat selected")
	}

	orgID, _ := model.OrganizationIDFromContext(ctx)
	threat, err := uc.repo.Threat().Get(ctx, orgID, threatID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, threatID))
		}
		return nil, goerr.Wrap(err, "failed to get threat", goerr.V(ThreatIDKey, threatID))
	}

	return model.NewEvaluationSession(threat, assetID), nil
}

// StartEdit opens a session on a persisted risk of the organization in context
func (uc *EvaluationUseCase) StartEdit(ctx context.Context, riskID int64) (*model.EvaluationSession, error) {
	risk, err := uc.GetRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}

	var controls []string
	if threat, err := uc.repo.Threat().Get(ctx, risk.OrganizationID, risk.ThreatID); err == nil {
		controls = threat.RecommendedControls
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get threat of risk",
			goerr.V(RiskIDKey, riskID), goerr.V(ThreatIDKey, risk.ThreatID))
	}

	return model.NewEditSession(risk, controls), nil
}

// Save persists the session: insert on the first save, update afterwards.
// quickSave is allowed from assessment and treatment, a full save only from
// summary. On failure the session is left untouched so the save can be retried.
func (uc *EvaluationUseCase) Save(ctx context.Context, session *model.EvaluationSession, quickSave bool) (*model.Risk, error) {
	if session.IsClosed() {
		return nil, goerr.Wrap(ErrSessionClosed, "cannot save a closed session", goerr.V(SessionIDKey, session.ID))
	}
	if session.ThreatID == "" {
		return nil, goerr.Wrap(ErrThreatRequired, "session has no threat", goerr.V(SessionIDKey, session.ID))
	}

	stage := session.Stage().Name()
	if quickSave && !session.CanQuickSave() {
		return nil, goerr.Wrap(model.ErrSaveNotPermitted, "quick save is not available",
			goerr.V(model.StageKey, stage))
	}
	if !quickSave && !session.CanFullSave() {
		return nil, goerr.Wrap(model.ErrSaveNotPermitted, "full save is only available from the summary",
			goerr.V(model.StageKey, stage))
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	risk := session.BuildRisk(orgID)
	change := model.Change{OrganizationID: orgID}

	var saved *model.Risk
	if session.IsEditing() {
		before := session.Risk()
		saved, err = uc.repo.Risk().Update(ctx, before.OrganizationID, risk)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, before.ID))
			}
			return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, before.ID))
		}
		change.OrganizationID = before.OrganizationID
		change.Action = types.AuditActionUpdate
		change.Before = before
	} else {
		saved, err = uc.repo.Risk().Create(ctx, orgID, risk)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create risk", goerr.V(ThreatIDKey, session.ThreatID))
		}
		change.Action = types.AuditActionCreate
	}
	change.After = saved

	session.Committed(saved, quickSave)
	uc.committer.committed(ctx, change)

	logging.From(ctx).Info("risk saved",
		"risk_id", saved.ID,
		"stage", stage,
		"quick_save", quickSave,
		"status", saved.Status,
		"inherent_score", saved.InherentScore,
	)

	return saved, nil
}

// GetRisk returns a risk of the organization in context
func (uc *EvaluationUseCase) GetRisk(ctx context.Context, id int64) (*model.Risk, error) {
	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	risk, err := uc.repo.Risk().Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// ListRisks returns the risks of the organization in context
func (uc *EvaluationUseCase) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	risks, err := uc.repo.Risk().List(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(OrganizationIDKey, orgID))
	}
	return risks, nil
}

// DeleteRisk deletes a risk of the organization in context. Actions and
// training records generated from it are kept.
func (uc *EvaluationUseCase) DeleteRisk(ctx context.Context, id int64) error {
	existing, err := uc.GetRisk(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.repo.Risk().Delete(ctx, existing.OrganizationID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete risk", goerr.V(RiskIDKey, id))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: existing.OrganizationID,
		Action:         types.AuditActionDelete,
		Before:         existing,
	})

	return nil
}
