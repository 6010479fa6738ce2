package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type AuditRepository interface {
	Create(ctx context.Context, organizationID string, audit *model.Audit) (*model.Audit, error)
	Get(ctx context.Context, organizationID string, id int64) (*model.Audit, error)
	List(ctx context.Context, organizationID string) ([]*model.Audit, error)
}

// AuditLogRepository stores the audit trail. Entries are never updated.
type AuditLogRepository interface {
	Put(ctx context.Context, event *model.AuditEvent) error
	// List returns the entries of the organization, newest first
	List(ctx context.Context, organizationID string, entityType types.EntityType, entityID string) ([]*model.AuditEvent, error)
}

// SequenceRepository issues monotonically increasing numbers per organization
// and kind, starting at 1
type SequenceRepository interface {
	Next(ctx context.Context, organizationID string, kind types.SequenceKind) (int64, error)
}
