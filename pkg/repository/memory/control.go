package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type controlRepository struct {
	mu       sync.RWMutex
	controls map[string]map[string]*model.Control
}

func newControlRepository() *controlRepository {
	return &controlRepository{
		controls: make(map[string]map[string]*model.Control),
	}
}

func copyControl(c *model.Control) *model.Control {
	result := *c
	if c.LastVerifiedAt != nil {
		verified := *c.LastVerifiedAt
		result.LastVerifiedAt = &verified
	}
	return &result
}

func (r *controlRepository) Put(ctx context.Context, control *model.Control) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if control.Reference == "" {
		return goerr.New("control reference is required")
	}
	if _, exists := r.controls[control.OrganizationID]; !exists {
		r.controls[control.OrganizationID] = make(map[string]*model.Control)
	}

	stored := copyControl(control)
	stored.UpdatedAt = time.Now().UTC()
	r.controls[control.OrganizationID][control.Reference] = stored
	return nil
}

func (r *controlRepository) Get(ctx context.Context, organizationID string, reference string) (*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	control, exists := r.controls[organizationID][reference]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("reference", reference))
	}
	return copyControl(control), nil
}

func (r *controlRepository) List(ctx context.Context, organizationID string) ([]*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	controls := make([]*model.Control, 0, len(r.controls[organizationID]))
	for _, control := range r.controls[organizationID] {
		controls = append(controls, copyControl(control))
	}
	sort.Slice(controls, func(i, j int) bool {
		return controls[i].Reference < controls[j].Reference
	})
	return controls, nil
}

func (r *controlRepository) Delete(ctx context.Context, organizationID string, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controls[organizationID][reference]; !exists {
		return goerr.Wrap(ErrNotFound, "control not found", goerr.V("reference", reference))
	}
	delete(r.controls[organizationID], reference)
	return nil
}
