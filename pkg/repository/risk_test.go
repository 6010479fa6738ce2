package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newRisk := func() *model.Risk {
		deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
		return &model.Risk{
			Type:                 types.RiskTypeScenario,
			ThreatID:             "T-CYB-001",
			Name:                 "Ransomware",
			InherentProbability:  4,
			ImpactOperational:    5,
			ImpactEconomic:       3,
			ImpactLegal:          2,
			InherentImpact:       5,
			InherentScore:        20,
			InherentLevel:        types.RiskLevelCritical,
			ResidualProbability:  2,
			ResidualImpact:       3,
			ResidualScore:        6,
			ResidualLevel:        types.RiskLevelLow,
			TreatmentStrategy:    types.TreatmentMitigate,
			TreatmentDescription: "EDR rollout",
			TreatmentCost:        12000,
			TreatmentDeadline:    &deadline,
			RelatedControls:      []string{"A.8.7", "A.8.13"},
			Status:               types.RiskStatusInTreatment,
		}
	}

	t.Run("Create assigns sequential IDs per organization", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		first, err := repo.Risk().Create(ctx, orgID, newRisk())
		gt.NoError(t, err).Required()
		second, err := repo.Risk().Create(ctx, orgID, newRisk())
		gt.NoError(t, err).Required()

		gt.Value(t, first.ID).Equal(int64(1))
		gt.Value(t, second.ID).Equal(int64(2))
		gt.Value(t, first.OrganizationID).Equal(orgID)

		other, err := repo.Risk().Create(ctx, orgID+"-other", newRisk())
		gt.NoError(t, err).Required()
		gt.Value(t, other.ID).Equal(int64(1))
	})

	t.Run("Get returns every persisted field", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		created, err := repo.Risk().Create(ctx, orgID, newRisk())
		gt.NoError(t, err).Required()

		got, err := repo.Risk().Get(ctx, orgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ImpactOperational).Equal(types.Rating(5))
		gt.Value(t, got.ImpactEconomic).Equal(types.Rating(3))
		gt.Value(t, got.ImpactLegal).Equal(types.Rating(2))
		gt.Value(t, got.InherentScore).Equal(20)
		gt.Value(t, got.InherentLevel).Equal(types.RiskLevelCritical)
		gt.Value(t, got.ResidualScore).Equal(6)
		gt.Value(t, got.Status).Equal(types.RiskStatusInTreatment)
		gt.Value(t, got.RelatedControls).Equal([]string{"A.8.7", "A.8.13"})
		gt.Value(t, got.TreatmentDeadline).NotNil()
		gt.Bool(t, got.TreatmentDeadline.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))).True()
	})

	t.Run("Get of unknown risk", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Get(context.Background(), newOrgID(t), 999)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("returned risks are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		created, err := repo.Risk().Create(ctx, orgID, newRisk())
		gt.NoError(t, err).Required()
		created.RelatedControls[0] = "changed"

		got, err := repo.Risk().Get(ctx, orgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RelatedControls[0]).Equal("A.8.7")
	})

	t.Run("Update replaces fields and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		created, err := repo.Risk().Create(ctx, orgID, newRisk())
		gt.NoError(t, err).Required()

		created.TreatmentDescription = ""
		created.Status = types.RiskStatusEvaluated
		updated, err := repo.Risk().Update(ctx, orgID, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.RiskStatusEvaluated)
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		_, err = repo.Risk().Update(ctx, orgID, &model.Risk{ID: 999})
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("List and Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		for i := 0; i < 3; i++ {
			_, err := repo.Risk().Create(ctx, orgID, newRisk())
			gt.NoError(t, err).Required()
		}

		risks, err := repo.Risk().List(ctx, orgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(3)

		gt.NoError(t, repo.Risk().Delete(ctx, orgID, risks[0].ID)).Required()
		risks, err = repo.Risk().List(ctx, orgID)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)

		err = repo.Risk().Delete(ctx, orgID, 999)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("CountByThreat", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orgID := newOrgID(t)

		for _, threatID := range []types.ThreatID{"T-CYB-001", "T-CYB-001", "T-NAT-001"} {
			risk := newRisk()
			risk.ThreatID = threatID
			_, err := repo.Risk().Create(ctx, orgID, risk)
			gt.NoError(t, err).Required()
		}

		count, err := repo.Risk().CountByThreat(ctx, orgID, "T-CYB-001")
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)

		count, err = repo.Risk().CountByThreat(ctx, orgID, "T-HUM-001")
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)

		count, err = repo.Risk().CountByThreat(ctx, orgID+"-other", "T-CYB-001")
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)
	})
}

func TestRiskRepository_Memory(t *testing.T) {
	runRiskRepositoryTest(t, newMemoryRepository)
}

func TestRiskRepository_Firestore(t *testing.T) {
	runRiskRepositoryTest(t, newFirestoreRepository)
}
