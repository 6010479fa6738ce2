package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type nonConformityRepository struct {
	mu     sync.RWMutex
	items  map[string]map[int64]*model.NonConformity
	nextID map[string]int64
}

func newNonConformityRepository() *nonConformityRepository {
	return &nonConformityRepository{
		items:  make(map[string]map[int64]*model.NonConformity),
		nextID: make(map[string]int64),
	}
}

func (r *nonConformityRepository) Create(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[organizationID]; !exists {
		r.items[organizationID] = make(map[int64]*model.NonConformity)
		r.nextID[organizationID] = 1
	}

	now := time.Now().UTC()
	created := *nc
	created.ID = r.nextID[organizationID]
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[organizationID]++

	r.items[organizationID][created.ID] = &created
	result := created
	return &result, nil
}

func (r *nonConformityRepository) Get(ctx context.Context, organizationID string, id int64) (*model.NonConformity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nc, exists := r.items[organizationID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "non-conformity not found", goerr.V("id", id))
	}
	result := *nc
	return &result, nil
}

func (r *nonConformityRepository) List(ctx context.Context, organizationID string) ([]*model.NonConformity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*model.NonConformity, 0, len(r.items[organizationID]))
	for _, nc := range r.items[organizationID] {
		c := *nc
		items = append(items, &c)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *nonConformityRepository) Update(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[organizationID][nc.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "non-conformity not found", goerr.V("id", nc.ID))
	}

	updated := *nc
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.items[organizationID][updated.ID] = &updated

	result := updated
	return &result, nil
}
