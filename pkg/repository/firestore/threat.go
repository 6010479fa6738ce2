package firestore

import (
	"context"
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type threatRepository struct {
	store *store
}

func (r *threatRepository) sharedRef(id types.ThreatID) *firestore.DocumentRef {
	return r.store.root(collectionThreats).Doc(id.String())
}

func (r *threatRepository) customRef(organizationID string, id types.ThreatID) *firestore.DocumentRef {
	return r.store.org(organizationID, collectionThreats).Doc(id.String())
}

func (r *threatRepository) Create(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	if _, err := r.sharedRef(threat.ID).Get(ctx); err == nil {
		return nil, goerr.New("threat ID already used by the shared catalog", goerr.V("id", threat.ID))
	} else if !isNotFound(err) {
		return nil, goerr.Wrap(err, "failed to check shared catalog", goerr.V("id", threat.ID))
	}

	now := time.Now().UTC()
	created := *threat
	created.CreatedAt = now
	created.UpdatedAt = now

	// Create fails when the document already exists
	if _, err := r.customRef(threat.OrganizationID, threat.ID).Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create threat", goerr.V("id", threat.ID))
	}

	return &created, nil
}

func (r *threatRepository) Get(ctx context.Context, organizationID string, id types.ThreatID) (*model.Threat, error) {
	threat, err := get[model.Threat](ctx, r.sharedRef(id), "threat")
	if err == nil {
		return threat, nil
	}
	if !errors.Is(err, ErrNotFound) || organizationID == "" {
		return nil, err
	}

	return get[model.Threat](ctx, r.customRef(organizationID, id), "threat")
}

func (r *threatRepository) List(ctx context.Context, organizationID string, opts ...interfaces.ListThreatOption) ([]*model.Threat, error) {
	cfg := interfaces.BuildListThreatConfig(opts...)

	filter := func(q firestore.Query) firestore.Query {
		if c := cfg.Category(); c != nil {
			q = q.Where("Category", "==", c.String())
		}
		if n := cfg.NIS2Type(); n != nil {
			q = q.Where("NIS2Type", "==", n.String())
		}
		return q
	}

	threats, err := collect[model.Threat](filter(r.store.root(collectionThreats).Query).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list shared threats")
	}

	// Without an organization only the shared catalog is visible
	if organizationID != "" {
		custom, err := collect[model.Threat](filter(r.store.org(organizationID, collectionThreats).Query).Documents(ctx))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list custom threats", goerr.V("organization_id", organizationID))
		}
		threats = append(threats, custom...)
	}

	sort.Slice(threats, func(i, j int) bool {
		return threats[i].ID < threats[j].ID
	})

	return threats, nil
}

func (r *threatRepository) Update(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	ref := r.customRef(threat.OrganizationID, threat.ID)
	existing, err := get[model.Threat](ctx, ref, "threat")
	if err != nil {
		return nil, err
	}

	updated := *threat
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := ref.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update threat", goerr.V("id", threat.ID))
	}

	return &updated, nil
}

func (r *threatRepository) Delete(ctx context.Context, organizationID string, id types.ThreatID) error {
	ref := r.customRef(organizationID, id)
	if err := exists(ctx, ref, "threat"); err != nil {
		return err
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete threat", goerr.V("id", id))
	}
	return nil
}

func (r *threatRepository) PutShared(ctx context.Context, threats []*model.Threat) error {
	bw := r.store.client.BulkWriter(ctx)
	now := time.Now().UTC()

	jobs := make([]*firestore.BulkWriterJob, 0, len(threats))
	for _, threat := range threats {
		stored := *threat
		stored.IsCustom = false
		stored.OrganizationID = ""
		stored.UpdatedAt = now
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}

		job, err := bw.Set(r.sharedRef(threat.ID), &stored)
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue threat", goerr.V("id", threat.ID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write threat", goerr.V("id", threats[i].ID))
		}
	}

	return nil
}
