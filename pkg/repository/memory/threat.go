package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type threatRepository struct {
	mu     sync.RWMutex
	shared map[types.ThreatID]*model.Threat
	custom map[string]map[types.ThreatID]*model.Threat
}

func newThreatRepository() *threatRepository {
	return &threatRepository{
		shared: make(map[types.ThreatID]*model.Threat),
		custom: make(map[string]map[types.ThreatID]*model.Threat),
	}
}

// copyThreat creates a deep copy of a threat
func copyThreat(t *model.Threat) *model.Threat {
	c := *t
	c.RecommendedControls = append([]string{}, t.RecommendedControls...)
	c.Sectors = append([]string{}, t.Sectors...)
	return &c
}

func (r *threatRepository) Create(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orgID := threat.OrganizationID
	if _, exists := r.shared[threat.ID]; exists {
		return nil, goerr.New("threat ID already used by the shared catalog", goerr.V("id", threat.ID))
	}
	if _, exists := r.custom[orgID]; !exists {
		r.custom[orgID] = make(map[types.ThreatID]*model.Threat)
	}
	if _, exists := r.custom[orgID][threat.ID]; exists {
		return nil, goerr.New("threat already exists", goerr.V("id", threat.ID))
	}

	now := time.Now().UTC()
	created := copyThreat(threat)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.custom[orgID][created.ID] = created
	return copyThreat(created), nil
}

func (r *threatRepository) Get(ctx context.Context, organizationID string, id types.ThreatID) (*model.Threat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if threat, exists := r.shared[id]; exists {
		return copyThreat(threat), nil
	}
	if threat, exists := r.custom[organizationID][id]; exists {
		return copyThreat(threat), nil
	}

	return nil, goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", id))
}

func (r *threatRepository) List(ctx context.Context, organizationID string, opts ...interfaces.ListThreatOption) ([]*model.Threat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListThreatConfig(opts...)
	threats := make([]*model.Threat, 0, len(r.shared)+len(r.custom[organizationID]))
	for _, threat := range r.shared {
		if cfg.Match(threat.Category, threat.NIS2Type) {
			threats = append(threats, copyThreat(threat))
		}
	}
	for _, threat := range r.custom[organizationID] {
		if cfg.Match(threat.Category, threat.NIS2Type) {
			threats = append(threats, copyThreat(threat))
		}
	}

	sort.Slice(threats, func(i, j int) bool {
		return threats[i].ID < threats[j].ID
	})

	return threats, nil
}

func (r *threatRepository) Update(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.custom[threat.OrganizationID][threat.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", threat.ID))
	}

	updated := copyThreat(threat)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.custom[threat.OrganizationID][updated.ID] = updated
	return copyThreat(updated), nil
}

func (r *threatRepository) Delete(ctx context.Context, organizationID string, id types.ThreatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.custom[organizationID][id]; !exists {
		return goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", id))
	}

	delete(r.custom[organizationID], id)
	return nil
}

func (r *threatRepository) PutShared(ctx context.Context, threats []*model.Threat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, threat := range threats {
		stored := copyThreat(threat)
		stored.IsCustom = false
		stored.OrganizationID = ""
		if existing, exists := r.shared[threat.ID]; exists {
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now
		r.shared[stored.ID] = stored
	}

	return nil
}
