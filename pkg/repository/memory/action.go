package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[string]map[int64]*model.ImprovementAction
	nextID  map[string]int64
}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[string]map[int64]*model.ImprovementAction),
		nextID:  make(map[string]int64),
	}
}

func (r *actionRepository) ensureOrganization(organizationID string) {
	if _, exists := r.actions[organizationID]; !exists {
		r.actions[organizationID] = make(map[int64]*model.ImprovementAction)
	}
	if _, exists := r.nextID[organizationID]; !exists {
		r.nextID[organizationID] = 1
	}
}

// copyAction creates a copy of an action
func copyAction(a *model.ImprovementAction) *model.ImprovementAction {
	c := *a
	return &c
}

func (r *actionRepository) Create(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureOrganization(organizationID)

	now := time.Now().UTC()
	created := copyAction(action)
	created.ID = r.nextID[organizationID]
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[organizationID]++

	r.actions[organizationID][created.ID] = created
	return copyAction(created), nil
}

func (r *actionRepository) Get(ctx context.Context, organizationID string, id int64) (*model.ImprovementAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, exists := r.actions[organizationID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}

	return copyAction(action), nil
}

func (r *actionRepository) List(ctx context.Context, organizationID string) ([]*model.ImprovementAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(organizationID, func(*model.ImprovementAction) bool { return true }), nil
}

func (r *actionRepository) Update(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.actions[organizationID][action.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	updated := copyAction(action)
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.actions[organizationID][updated.ID] = updated
	return copyAction(updated), nil
}

func (r *actionRepository) Delete(ctx context.Context, organizationID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[organizationID][id]; !exists {
		return goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}

	delete(r.actions[organizationID], id)
	return nil
}

func (r *actionRepository) ListBySource(ctx context.Context, organizationID string, source string, sourceID int64) ([]*model.ImprovementAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(organizationID, func(a *model.ImprovementAction) bool {
		return a.Source == source && a.SourceID == sourceID
	}), nil
}

func (r *actionRepository) collect(organizationID string, match func(*model.ImprovementAction) bool) []*model.ImprovementAction {
	actions := make([]*model.ImprovementAction, 0)
	for _, action := range r.actions[organizationID] {
		if match(action) {
			actions = append(actions, copyAction(action))
		}
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].ID < actions[j].ID
	})
	return actions
}
