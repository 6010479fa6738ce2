package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// ThreatRepository stores the shared threat catalog and the custom threats of
// each organization
type ThreatRepository interface {
	// Create stores a custom threat of threat.OrganizationID
	Create(ctx context.Context, threat *model.Threat) (*model.Threat, error)

	// Get retrieves a threat visible to the organization: a shared catalog
	// entry or one of its custom threats
	Get(ctx context.Context, organizationID string, id types.ThreatID) (*model.Threat, error)

	// List retrieves the shared catalog and the organization's custom threats
	List(ctx context.Context, organizationID string, opts ...ListThreatOption) ([]*model.Threat, error)

	// Update replaces a custom threat
	Update(ctx context.Context, threat *model.Threat) (*model.Threat, error)

	// Delete deletes a custom threat
	Delete(ctx context.Context, organizationID string, id types.ThreatID) error

	// PutShared upserts shared catalog entries
	PutShared(ctx context.Context, threats []*model.Threat) error
}
