package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

// PostCommitHook is invoked after a create, update or delete was persisted.
// A failing hook never affects the committed change or the other hooks.
type PostCommitHook func(ctx context.Context, change model.Change) error

// NewAuditLogHook writes every change to the audit trail
func NewAuditLogHook(repo interfaces.Repository, clock func() time.Time) PostCommitHook {
	return func(ctx context.Context, change model.Change) error {
		event := model.NewAuditEvent(change, clock().UTC())
		if err := repo.AuditLog().Put(ctx, event); err != nil {
			return goerr.Wrap(err, "failed to write audit event",
				goerr.V("entity_type", event.EntityType), goerr.V("entity_id", event.EntityID))
		}
		return nil
	}
}

type committer struct {
	hooks []PostCommitHook
}

func (c *committer) committed(ctx context.Context, change model.Change) {
	for _, hook := range c.hooks {
		if err := hook(ctx, change); err != nil {
			_ = errutil.Handle(ctx, err, "post-commit hook failed")
		}
	}
}
