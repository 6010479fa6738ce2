package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// ControlRepository stores the control implementation status of each
// organization, keyed by control reference
type ControlRepository interface {
	Put(ctx context.Context, control *model.Control) error
	Get(ctx context.Context, organizationID string, reference string) (*model.Control, error)
	List(ctx context.Context, organizationID string) ([]*model.Control, error)
	Delete(ctx context.Context, organizationID string, reference string) error
}

type NonConformityRepository interface {
	Create(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error)
	Get(ctx context.Context, organizationID string, id int64) (*model.NonConformity, error)
	List(ctx context.Context, organizationID string) ([]*model.NonConformity, error)
	Update(ctx context.Context, organizationID string, nc *model.NonConformity) (*model.NonConformity, error)
}
