package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// ActionRepository defines the interface for improvement action data access
type ActionRepository interface {
	// Create creates a new action with auto-generated ID
	Create(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error)

	// Get retrieves an action by ID
	Get(ctx context.Context, organizationID string, id int64) (*model.ImprovementAction, error)

	// List retrieves all actions
	List(ctx context.Context, organizationID string) ([]*model.ImprovementAction, error)

	// Update updates an existing action
	Update(ctx context.Context, organizationID string, action *model.ImprovementAction) (*model.ImprovementAction, error)

	// Delete deletes an action by ID
	Delete(ctx context.Context, organizationID string, id int64) error

	// ListBySource retrieves the actions generated from a source record
	ListBySource(ctx context.Context, organizationID string, source string, sourceID int64) ([]*model.ImprovementAction, error)
}
