package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func completeAssessment() model.Assessment {
	return model.Assessment{
		Probability:       4,
		ImpactOperational: 5,
		ImpactEconomic:    3,
		ImpactLegal:       2,
	}
}

func completeTreatment() model.Treatment {
	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	return model.Treatment{
		SelectedControls:    []string{"A.8.7", "A.8.13"},
		ResidualProbability: 2,
		ResidualImpact:      3,
		Strategy:            types.TreatmentMitigate,
		Description:         "Deploy EDR and offline backups",
		Cost:                12000,
		Deadline:            &deadline,
		Responsible:         "CISO",
	}
}

func TestEvaluationUseCase_StartEvaluation(t *testing.T) {
	uc, _ := newTestUseCases(t)

	t.Run("prefills from the threat", func(t *testing.T) {
		session, err := uc.Evaluation.StartEvaluation(orgContext(), "T-CYB-001", "")
		gt.NoError(t, err).Required()

		gt.Value(t, session.ThreatID).Equal(types.ThreatID("T-CYB-001"))
		gt.Value(t, session.Name).Equal("Ransomware")
		gt.Value(t, session.RecommendedControls).Equal([]string{"A.8.7", "A.8.13"})
		gt.Value(t, session.Stage().Name()).Equal(types.EvaluationStageAssessment)
		gt.Bool(t, session.IsEditing()).False()
	})

	t.Run("no threat selected", func(t *testing.T) {
		_, err := uc.Evaluation.StartEvaluation(orgContext(), "", "")
		gt.Error(t, err).Is(usecase.ErrThreatRequired)
	})

	t.Run("unknown threat", func(t *testing.T) {
		_, err := uc.Evaluation.StartEvaluation(orgContext(), "T-UNK-999", "")
		gt.Error(t, err).Is(usecase.ErrThreatNotFound)
	})
}

func TestEvaluationUseCase_QuickSaveFromAssessment(t *testing.T) {
	uc, repo := newTestUseCases(t)
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-CYB-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(model.Assessment{Probability: 3, ImpactEconomic: 4})).Required()

	risk, err := uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()

	gt.Value(t, risk.InherentScore).Equal(12)
	gt.Value(t, risk.InherentLevel).Equal(types.RiskLevelMedium)
	gt.Value(t, risk.Status).Equal(types.RiskStatusEvaluated)
	gt.Value(t, risk.OrganizationID).Equal(testOrgID)
	gt.Number(t, risk.ResidualScore).Equal(0)
	gt.Bool(t, session.IsClosed()).True()

	stored, err := repo.Risk().Get(ctx, testOrgID, risk.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.InherentScore).Equal(12)

	t.Run("closed session cannot be saved again", func(t *testing.T) {
		_, err := uc.Evaluation.Save(ctx, session, true)
		gt.Error(t, err).Is(usecase.ErrSessionClosed)
	})
}

func TestEvaluationUseCase_QuickSaveFromTreatment(t *testing.T) {
	uc, repo := newTestUseCases(t)
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-CYB-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()
	gt.NoError(t, session.Advance()).Required()

	first, err := uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()
	gt.Bool(t, session.IsClosed()).False()
	gt.Bool(t, session.IsEditing()).True()
	gt.Value(t, session.Stage().Name()).Equal(types.EvaluationStageTreatment)

	gt.NoError(t, session.SetTreatment(completeTreatment())).Required()
	second, err := uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()

	gt.Value(t, second.ID).Equal(first.ID)
	gt.Value(t, second.Status).Equal(types.RiskStatusInTreatment)
	gt.Value(t, second.ResidualScore).Equal(6)

	risks, err := repo.Risk().List(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, risks).Length(1)
}

func TestEvaluationUseCase_FullSave(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-CYB-001", "srv-backup-01")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()

	_, err = uc.Evaluation.Save(ctx, session, false)
	gt.Error(t, err).Is(model.ErrSaveNotPermitted)

	gt.NoError(t, session.Advance()).Required()
	gt.NoError(t, session.SetTreatment(completeTreatment())).Required()
	gt.NoError(t, session.Advance()).Required()

	_, err = uc.Evaluation.Save(ctx, session, true)
	gt.Error(t, err).Is(model.ErrSaveNotPermitted)

	risk, err := uc.Evaluation.Save(ctx, session, false)
	gt.NoError(t, err).Required()

	gt.Value(t, risk.Type).Equal(types.RiskTypeAsset)
	gt.Value(t, risk.AssetID).Equal("srv-backup-01")
	gt.Value(t, risk.InherentScore).Equal(20)
	gt.Value(t, risk.InherentLevel).Equal(types.RiskLevelCritical)
	gt.Value(t, risk.ResidualScore).Equal(6)
	gt.Value(t, risk.ResidualLevel).Equal(types.RiskLevelLow)
	gt.Value(t, risk.RelatedControls).Equal([]string{"A.8.7", "A.8.13"})

	summary := session.Summary()
	gt.Value(t, summary.ReductionPercentage).Equal(70.0)

	stage, ok := session.Stage().(model.SummaryStage)
	gt.Bool(t, ok).True()
	gt.Bool(t, stage.Saved).True()
}

func TestEvaluationUseCase_SaveRequiresOrganization(t *testing.T) {
	uc, repo := newTestUseCases(t)

	session, err := uc.Evaluation.StartEvaluation(context.Background(), "T-CYB-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()

	_, err = uc.Evaluation.Save(context.Background(), session, true)
	gt.Error(t, err).Is(usecase.ErrOrganizationRequired)
	gt.Bool(t, session.IsClosed()).False()
	gt.Bool(t, session.IsEditing()).False()

	risks, err := repo.Risk().List(context.Background(), "")
	gt.NoError(t, err).Required()
	gt.Array(t, risks).Length(0)
}

var errStoreUnavailable = errors.New("store unavailable")

// unstableRiskRepository fails the next writes while failures is positive
type unstableRiskRepository struct {
	interfaces.RiskRepository
	failures *atomic.Int32
}

func (r unstableRiskRepository) Create(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, errStoreUnavailable
	}
	return r.RiskRepository.Create(ctx, organizationID, risk)
}

func (r unstableRiskRepository) Update(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, errStoreUnavailable
	}
	return r.RiskRepository.Update(ctx, organizationID, risk)
}

type unstableRepository struct {
	*memory.Memory
	failures *atomic.Int32
}

func (r unstableRepository) Risk() interfaces.RiskRepository {
	return unstableRiskRepository{RiskRepository: r.Memory.Risk(), failures: r.failures}
}

func TestEvaluationUseCase_SaveFailureKeepsSession(t *testing.T) {
	failures := &atomic.Int32{}
	repo := unstableRepository{Memory: memory.New(), failures: failures}
	uc := usecase.New(repo, usecase.WithClock(fixedClock))
	gt.NoError(t, uc.Threat.SeedCatalog(context.Background(), sharedCatalog())).Required()
	ctx := orgContext()

	t.Run("failed full save can be retried", func(t *testing.T) {
		session, err := uc.Evaluation.StartEvaluation(ctx, "T-CYB-001", "")
		gt.NoError(t, err).Required()
		gt.NoError(t, session.SetAssessment(completeAssessment())).Required()
		gt.NoError(t, session.Advance()).Required()
		gt.NoError(t, session.SetTreatment(completeTreatment())).Required()
		gt.NoError(t, session.Advance()).Required()

		failures.Store(1)
		_, err = uc.Evaluation.Save(ctx, session, false)
		gt.Error(t, err).Is(errStoreUnavailable)

		gt.Bool(t, session.IsClosed()).False()
		gt.Bool(t, session.IsEditing()).False()
		gt.Value(t, session.Stage()).Equal(model.EvaluationStage(model.SummaryStage{}))
		gt.Value(t, session.Assessment).Equal(completeAssessment())
		gt.Value(t, session.Treatment.Description).Equal("Deploy EDR and offline backups")
		gt.Value(t, session.Treatment.SelectedControls).Equal([]string{"A.8.7", "A.8.13"})

		risks, err := repo.Risk().List(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)

		risk, err := uc.Evaluation.Save(ctx, session, false)
		gt.NoError(t, err).Required()
		gt.Value(t, risk.InherentScore).Equal(20)
		gt.Value(t, session.Stage()).Equal(model.EvaluationStage(model.SummaryStage{Saved: true}))

		risks, err = repo.Risk().List(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1)
	})

	t.Run("failed update leaves the stored risk unchanged", func(t *testing.T) {
		risks, err := repo.Risk().List(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1).Required()
		stored := risks[0]

		session, err := uc.Evaluation.StartEdit(ctx, stored.ID)
		gt.NoError(t, err).Required()
		changed := model.Assessment{Probability: 2, ImpactOperational: 2, ImpactEconomic: 1, ImpactLegal: 1}
		gt.NoError(t, session.SetAssessment(changed)).Required()

		failures.Store(1)
		_, err = uc.Evaluation.Save(ctx, session, true)
		gt.Error(t, err).Is(errStoreUnavailable)

		gt.Bool(t, session.IsClosed()).False()
		gt.Bool(t, session.IsEditing()).True()
		gt.Value(t, session.Stage().Name()).Equal(types.EvaluationStageAssessment)
		gt.Value(t, session.Assessment).Equal(changed)

		unchanged, err := repo.Risk().Get(ctx, testOrgID, stored.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, unchanged.InherentScore).Equal(20)

		updated, err := uc.Evaluation.Save(ctx, session, true)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ID).Equal(stored.ID)
		gt.Value(t, updated.InherentScore).Equal(4)
		gt.Bool(t, session.IsClosed()).True()

		risks, err = repo.Risk().List(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1)
	})
}

func TestEvaluationUseCase_StartEdit(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-CYB-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()
	gt.NoError(t, session.Advance()).Required()
	gt.NoError(t, session.SetTreatment(completeTreatment())).Required()
	gt.NoError(t, session.Advance()).Required()
	original, err := uc.Evaluation.Save(ctx, session, false)
	gt.NoError(t, err).Required()

	edit, err := uc.Evaluation.StartEdit(ctx, original.ID)
	gt.NoError(t, err).Required()

	gt.Bool(t, edit.IsEditing()).True()
	gt.Value(t, edit.Assessment).Equal(completeAssessment())
	gt.Value(t, edit.Treatment.SelectedControls).Equal([]string{"A.8.7", "A.8.13"})
	gt.Value(t, edit.RecommendedControls).Equal([]string{"A.8.7", "A.8.13"})

	assessment := completeAssessment()
	assessment.Probability = 2
	gt.NoError(t, edit.SetAssessment(assessment)).Required()
	gt.NoError(t, edit.Advance()).Required()
	gt.NoError(t, edit.Advance()).Required()

	updated, err := uc.Evaluation.Save(ctx, edit, false)
	gt.NoError(t, err).Required()

	gt.Value(t, updated.ID).Equal(original.ID)
	gt.Value(t, updated.OrganizationID).Equal(testOrgID)
	gt.Value(t, updated.CreatedAt).Equal(original.CreatedAt)
	gt.Value(t, updated.InherentScore).Equal(10)

	t.Run("unknown risk", func(t *testing.T) {
		_, err := uc.Evaluation.StartEdit(ctx, 9999)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})

	t.Run("risk of another organization", func(t *testing.T) {
		otherCtx := model.ContextWithOrganizationID(context.Background(), "org-other")
		_, err := uc.Evaluation.StartEdit(otherCtx, original.ID)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestEvaluationUseCase_AuditTrail(t *testing.T) {
	uc, repo := newTestUseCases(t)
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-NAT-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()
	gt.NoError(t, session.Advance()).Required()

	risk, err := uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetTreatment(completeTreatment())).Required()
	_, err = uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()
	gt.NoError(t, uc.Evaluation.DeleteRisk(ctx, risk.ID)).Required()

	events, err := repo.AuditLog().List(ctx, testOrgID, types.EntityRisk, formatID(risk.ID))
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(3).Required()

	actions := []types.AuditAction{events[0].Action, events[1].Action, events[2].Action}
	gt.Array(t, actions).Has(types.AuditActionCreate)
	gt.Array(t, actions).Has(types.AuditActionUpdate)
	gt.Array(t, actions).Has(types.AuditActionDelete)

	for _, event := range events {
		if event.Action == types.AuditActionUpdate {
			gt.Value(t, event.OldValues["status"]).Equal(types.RiskStatusEvaluated.String())
			gt.Value(t, event.NewValues["status"]).Equal(types.RiskStatusInTreatment.String())
		}
	}

	_, err = uc.Evaluation.GetRisk(ctx, risk.ID)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)
}

func TestEvaluationUseCase_FailingHookDoesNotFailSave(t *testing.T) {
	var calls atomic.Int32
	hook := func(ctx context.Context, change model.Change) error {
		calls.Add(1)
		return errors.New("notification unavailable")
	}
	uc, repo := newTestUseCases(t, usecase.WithPostCommitHook(hook))
	ctx := orgContext()

	session, err := uc.Evaluation.StartEvaluation(ctx, "T-HUM-001", "")
	gt.NoError(t, err).Required()
	gt.NoError(t, session.SetAssessment(completeAssessment())).Required()

	risk, err := uc.Evaluation.Save(ctx, session, true)
	gt.NoError(t, err).Required()
	gt.Value(t, calls.Load()).Equal(int32(1))

	events, err := repo.AuditLog().List(ctx, testOrgID, types.EntityRisk, formatID(risk.ID))
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(1)
}

func TestEvaluationUseCase_ListRisks(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := orgContext()

	for _, id := range []types.ThreatID{"T-CYB-001", "T-NAT-001"} {
		session, err := uc.Evaluation.StartEvaluation(ctx, id, "")
		gt.NoError(t, err).Required()
		gt.NoError(t, session.SetAssessment(completeAssessment())).Required()
		_, err = uc.Evaluation.Save(ctx, session, true)
		gt.NoError(t, err).Required()
	}

	risks, err := uc.Evaluation.ListRisks(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, risks).Length(2)

	_, err = uc.Evaluation.ListRisks(context.Background())
	gt.Error(t, err).Is(usecase.ErrOrganizationRequired)
}
