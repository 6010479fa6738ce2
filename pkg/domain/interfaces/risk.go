package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type RiskRepository interface {
	// Create creates a new risk with auto-generated ID
	Create(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, organizationID string, id int64) (*model.Risk, error)

	// List retrieves all risks of the organization
	List(ctx context.Context, organizationID string) ([]*model.Risk, error)

	// Update updates an existing risk
	Update(ctx context.Context, organizationID string, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk by ID
	Delete(ctx context.Context, organizationID string, id int64) error

	// CountByThreat counts the risks of the organization referencing a threat
	CountByThreat(ctx context.Context, organizationID string, threatID types.ThreatID) (int, error)
}
