package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type trainingRepository struct {
	store *store
}

func (r *trainingRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionTrainings)
}

func (r *trainingRepository) Create(ctx context.Context, organizationID string, record *model.TrainingRecord) (*model.TrainingRecord, error) {
	nextID, err := r.store.nextID(ctx, organizationID, "training_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *record
	created.ID = nextID
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(organizationID).Doc(docID(created.ID)).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create training record", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *trainingRepository) Get(ctx context.Context, organizationID string, id int64) (*model.TrainingRecord, error) {
	return get[model.TrainingRecord](ctx, r.collection(organizationID).Doc(docID(id)), "training record")
}

func (r *trainingRepository) List(ctx context.Context, organizationID string) ([]*model.TrainingRecord, error) {
	records, err := collect[model.TrainingRecord](r.collection(organizationID).OrderBy("ID", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list training records", goerr.V("organization_id", organizationID))
	}
	return records, nil
}
