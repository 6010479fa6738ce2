package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type controlRepository struct {
	store *store
}

// Control references contain dots (A.8.8), which are valid in document IDs,
// but slashes are not
func controlDocID(reference string) string {
	return strings.ReplaceAll(reference, "/", "_")
}

func (r *controlRepository) collection(organizationID string) *firestore.CollectionRef {
	return r.store.org(organizationID, collectionControls)
}

func (r *controlRepository) Put(ctx context.Context, control *model.Control) error {
	if control.Reference == "" {
		return goerr.New("control reference is required")
	}

	stored := *control
	stored.UpdatedAt = time.Now().UTC()

	ref := r.collection(control.OrganizationID).Doc(controlDocID(control.Reference))
	if _, err := ref.Set(ctx, &stored); err != nil {
		return goerr.Wrap(err, "failed to put control", goerr.V("reference", control.Reference))
	}
	return nil
}

func (r *controlRepository) Get(ctx context.Context, organizationID string, reference string) (*model.Control, error) {
	return get[model.Control](ctx, r.collection(organizationID).Doc(controlDocID(reference)), "control")
}

func (r *controlRepository) List(ctx context.Context, organizationID string) ([]*model.Control, error) {
	controls, err := collect[model.Control](r.collection(organizationID).OrderBy("Reference", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls", goerr.V("organization_id", organizationID))
	}
	return controls, nil
}

func (r *controlRepository) Delete(ctx context.Context, organizationID string, reference string) error {
	ref := r.collection(organizationID).Doc(controlDocID(reference))
	if err := exists(ctx, ref, "control"); err != nil {
		return err
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete control", goerr.V("reference", reference))
	}
	return nil
}
