package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type nonConformityRepository struct {
	store *store
}

func (r *nonConformityRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionNonConformities)
}

func (r *nonConformityRepository) Create(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error) {
	nextID, err := r.store.nextID(ctx, organizationID, "non_conformity_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *nc
	created.ID = nextID
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(organizationID).Doc(docID(created.ID)).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create non-conformity", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *nonConformityRepository) Get(ctx context.Context, organizationID string, id int64) (*model.NonConformity, error) {
	return get[model.NonConformity](ctx, r.collection(organizationID).Doc(docID(id)), "non-conformity")
}

func (r *nonConformityRepository) List(ctx context.Context, organizationID string) ([]*model.NonConformity, error) {
	items, err := collect[model.NonConformity](r.collection(organizationID).OrderBy("ID", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list non-conformities", goerr.V("organization_id", organizationID))
	}
	return items, nil
}

func (r *nonConformityRepository) Update(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error) {
	ref := r.collection(organizationID).Doc(docID(nc.ID))
	existing, err := get[model.NonConformity](ctx, ref, "non-conformity")
	if err != nil {
		return nil, err
	}

	updated := *nc
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := ref.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update non-conformity", goerr.V("id", nc.ID))
	}

	return &updated, nil
}
