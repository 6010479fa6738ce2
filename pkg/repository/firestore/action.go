package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type actionRepository struct {
	store *store
}

func (r *actionRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionActions)
}

func (r *actionRepository) Create(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error) {
	nextID, err := r.store.nextID(ctx, organizationID, "action_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *action
	created.ID = nextID
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(organizationID).Doc(docID(created.ID)).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *actionRepository) Get(ctx context.Context, organizationID string, id int64) (*model.ImprovementAction, error) {
	return get[model.ImprovementAction](ctx, r.collection(organizationID).Doc(docID(id)), "action")
}

func (r *actionRepository) List(ctx context.Context, organizationID string) ([]*model.ImprovementAction, error) {
	actions, err := collect[model.ImprovementAction](r.collection(organizationID).OrderBy("ID", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions", goerr.V("organization_id", organizationID))
	}
	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error) {
	ref := r.collection(organizationID).Doc(docID(action.ID))
	existing, err := get[model.ImprovementAction](ctx, ref, "action")
	if err != nil {
		return nil, err
	}

	updated := *action
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := ref.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("id", action.ID))
	}

	return &updated, nil
}

func (r *actionRepository) Delete(ctx context.Context, organizationID string, id int64) error {
	ref := r.collection(organizationID).Doc(docID(id))
	if err := exists(ctx, ref, "action"); err != nil {
		return err
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete action", goerr.V("id", id))
	}
	return nil
}

func (r *actionRepository) ListBySource(ctx context.Context, organizationID string, source string, sourceID int64) ([]*model.ImprovementAction, error) {
	iter := r.collection(organizationID).
		Where("Source", "==", source).
		Where("SourceID", "==", sourceID).
		Documents(ctx)

	actions, err := collect[model.ImprovementAction](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions by source",
			goerr.V("source", source), goerr.V("source_id", sourceID))
	}

	sortByID(actions, func(a *model.ImprovementAction) int64 { return a.ID })
	return actions, nil
}
