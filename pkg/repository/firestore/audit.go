package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type auditRepository struct {
	store *store
}

func (r *auditRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionAudits)
}

func (r *auditRepository) Create(ctx context.Context, organizationID string, audit *model.Audit) (*model.Audit, error) {
	nextID, err := r.store.nextID(ctx, organizationID, "audit_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *audit
	created.ID = nextID
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(organizationID).Doc(docID(created.ID)).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create audit", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *auditRepository) Get(ctx context.Context, organizationID string, id int64) (*model.Audit, error) {
	return get[model.Audit](ctx, r.collection(organizationID).Doc(docID(id)), "audit")
}

func (r *auditRepository) List(ctx context.Context, organizationID string) ([]*model.Audit, error) {
	audits, err := collect[model.Audit](r.collection(organizationID).OrderBy("ID", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audits", goerr.V("organization_id", organizationID))
	}
	return audits, nil
}

type auditLogRepository struct {
	store *store
}

func (r *auditLogRepository) Put(ctx context.Context, event *model.AuditEvent) error {
	ref := r.store.org(event.OrganizationID, collectionAuditLogs).Doc(string(event.ID))
	if _, err := ref.Set(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to put audit event", goerr.V("id", event.ID))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, organizationID string, entityType types.EntityType, entityID string) ([]*model.AuditEvent, error) {
	q := r.store.org(organizationID, collectionAuditLogs).Query
	if entityType != "" {
		q = q.Where("EntityType", "==", entityType.String())
	}
	if entityID != "" {
		q = q.Where("EntityID", "==", entityID)
	}

	events, err := collect[model.AuditEvent](q.Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit events", goerr.V("organization_id", organizationID))
	}

	// Sorted here so that filtered queries need no composite index
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

type sequenceRepository struct {
	store *store
}

func (r *sequenceRepository) Next(ctx context.Context, organizationID string, kind types.SequenceKind) (int64, error) {
	return r.store.nextID(ctx, organizationID, "sequence_"+string(kind))
}
