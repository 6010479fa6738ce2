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

type auditRepository struct {
	mu     sync.RWMutex
	audits map[string]map[int64]*model.Audit
	nextID map[string]int64
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		audits: make(map[string]map[int64]*model.Audit),
		nextID: make(map[string]int64),
	}
}

func copyAudit(a *model.Audit) *model.Audit {
	c := *a
	c.ControlScope = append([]string{}, a.ControlScope...)
	if a.PlannedDate != nil {
		planned := *a.PlannedDate
		c.PlannedDate = &planned
	}
	return &c
}

func (r *auditRepository) Create(ctx context.Context, organizationID string, audit *model.Audit) (*model.Audit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.audits[organizationID]; !exists {
		r.audits[organizationID] = make(map[int64]*model.Audit)
		r.nextID[organizationID] = 1
	}

	now := time.Now().UTC()
	created := copyAudit(audit)
	created.ID = r.nextID[organizationID]
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[organizationID]++

	r.audits[organizationID][created.ID] = created
	return copyAudit(created), nil
}

func (r *auditRepository) Get(ctx context.Context, organizationID string, id int64) (*model.Audit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	audit, exists := r.audits[organizationID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "audit not found", goerr.V("id", id))
	}
	return copyAudit(audit), nil
}

func (r *auditRepository) List(ctx context.Context, organizationID string) ([]*model.Audit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	audits := make([]*model.Audit, 0, len(r.audits[organizationID]))
	for _, audit := range r.audits[organizationID] {
		audits = append(audits, copyAudit(audit))
	}
	sort.Slice(audits, func(i, j int) bool {
		return audits[i].ID < audits[j].ID
	})
	return audits, nil
}

type auditLogRepository struct {
	mu     sync.RWMutex
	events map[string][]*model.AuditEvent
}

func newAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{
		events: make(map[string][]*model.AuditEvent),
	}
}

func copyAuditEvent(e *model.AuditEvent) *model.AuditEvent {
	c := *e
	c.OldValues = copyValues(e.OldValues)
	c.NewValues = copyValues(e.NewValues)
	return &c
}

func copyValues(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	result := make(map[string]any, len(values))
	for k, v := range values {
		result[k] = v
	}
	return result
}

func (r *auditLogRepository) Put(ctx context.Context, event *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrganizationID] = append(r.events[event.OrganizationID], copyAuditEvent(event))
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, organizationID string, entityType types.EntityType, entityID string) ([]*model.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.AuditEvent, 0)
	for _, event := range r.events[organizationID] {
		if entityType != "" && event.EntityType != entityType {
			continue
		}
		if entityID != "" && event.EntityID != entityID {
			continue
		}
		events = append(events, copyAuditEvent(event))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}
