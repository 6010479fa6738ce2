package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type riskRepository struct {
	mu     sync.RWMutex
	risks  map[string]map[int64]*model.Risk
	nextID map[string]int64
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks:  make(map[string]map[int64]*model.Risk),
		nextID: make(map[string]int64),
	}
}

func (r *riskRepository) ensureOrganization(organizationID string) {
	if _, exists := r.risks[organizationID]; !exists {
		r.risks[organizationID] = make(map[int64]*model.Risk)
	}
	if _, exists := r.nextID[organizationID]; !exists {
		r.nextID[organizationID] = 1
	}
}

// copyRisk creates a deep copy of a risk
func copyRisk(risk *model.Risk) *model.Risk {
	c := *risk
	c.RelatedControls = append([]string{}, risk.RelatedControls...)
	if risk.TreatmentDeadline != nil {
		deadline := *risk.TreatmentDeadline
		c.TreatmentDeadline = &deadline
	}
	return &c
}

func (r *riskRepository) Create(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureOrganization(organizationID)

	now := time.Now().UTC()
	created := copyRisk(risk)
	created.ID = r.nextID[organizationID]
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[organizationID]++

	r.risks[organizationID][created.ID] = created
	return copyRisk(created), nil
}

func (r *riskRepository) Get(ctx context.Context, organizationID string, id int64) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[organizationID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	return copyRisk(risk), nil
}

func (r *riskRepository) List(ctx context.Context, organizationID string) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org := r.risks[organizationID]
	risks := make([]*model.Risk, 0, len(org))
	for _, risk := range org {
		risks = append(risks, copyRisk(risk))
	}

	sort.Slice(risks, func(i, j int) bool {
		return risks[i].ID < risks[j].ID
	})

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[organizationID][risk.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}

	updated := copyRisk(risk)
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.risks[organizationID][updated.ID] = updated
	return copyRisk(updated), nil
}

func (r *riskRepository) Delete(ctx context.Context, organizationID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.risks[organizationID][id]; !exists {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	delete(r.risks[organizationID], id)
	return nil
}

func (r *riskRepository) CountByThreat(ctx context.Context, organizationID string, threatID types.ThreatID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, risk := range r.risks[organizationID] {
		if risk.ThreatID == threatID {
			count++
		}
	}
	return count, nil
}
