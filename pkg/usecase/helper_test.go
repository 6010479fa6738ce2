package usecase_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/usecase"
)

const testOrgID = "org-test"

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func orgContext() context.Context {
	return model.ContextWithOrganizationID(context.Background(), testOrgID)
}

func fixedClock() time.Time {
	return testNow
}

func sharedCatalog() []*model.Threat {
	return []*model.Threat{
		{
			ID:                  "T-CYB-001",
			Name:                "Ransomware",
			Description:         "Encryption of business data by malware",
			Category:            types.ThreatCategoryCyber,
			NIS2Type:            types.NIS2Integrity,
			BaselineProbability: 3,
			RecommendedControls: []string{"A.8.7", "A.8.13"},
		},
		{
			ID:          "T-NAT-001",
			Name:        "Flood",
			Description: "River flood reaching the data center",
			Category:    types.ThreatCategoryNatural,
			NIS2Type:    types.NIS2Availability,
			Sectors:     []string{"Energy", "Manufacturing"},
		},
		{
			ID:          "T-HUM-001",
			Name:        "Human error",
			Description: "Accidental deletion of records",
			Category:    types.ThreatCategoryHuman,
		},
	}
}

// newTestUseCases returns use cases over a memory repository seeded with the
// shared catalog
func newTestUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()

	repo := memory.New()
	opts = append([]usecase.Option{usecase.WithClock(fixedClock)}, opts...)
	uc := usecase.New(repo, opts...)
	gt.NoError(t, uc.Threat.SeedCatalog(context.Background(), sharedCatalog())).Required()
	return uc, repo
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
