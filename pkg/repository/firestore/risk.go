package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type riskRepository struct {
	store *store
}

func (r *riskRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionRisks)
}

func (r *riskRepository) Create(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	nextID, err := r.store.nextID(ctx, organizationID, "risk_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := *risk
	created.ID = nextID
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(organizationID).Doc(docID(created.ID)).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *riskRepository) Get(ctx context.Context, organizationID string, id int64) (*model.Risk, error) {
	return get[model.Risk](ctx, r.collection(organizationID).Doc(docID(id)), "risk")
}

func (r *riskRepository) List(ctx context.Context, organizationID string) ([]*model.Risk, error) {
	risks, err := collect[model.Risk](r.collection(organizationID).OrderBy("ID", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V("organization_id", organizationID))
	}
	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error) {
	ref := r.collection(organizationID).Doc(docID(risk.ID))
	existing, err := get[model.Risk](ctx, ref, "risk")
	if err != nil {
		return nil, err
	}

	updated := *risk
	updated.OrganizationID = organizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := ref.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}

	return &updated, nil
}

func (r *riskRepository) Delete(ctx context.Context, organizationID string, id int64) error {
	ref := r.collection(organizationID).Doc(docID(id))
	if err := exists(ctx, ref, "risk"); err != nil {
		return err
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V("id", id))
	}
	return nil
}

func (r *riskRepository) CountByThreat(ctx context.Context, organizationID string, threatID types.ThreatID) (int, error) {
	iter := r.collection(organizationID).
		Where("ThreatID", "==", threatID.String()).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count risks by threat", goerr.V("threat_id", threatID))
		}
		count++
	}

	return count, nil
}
