package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// ThreatInput is the content of the custom threat form
type ThreatInput struct {
	Name                string
	Description         string
	Category            types.ThreatCategory
	NIS2Type            types.NIS2IncidentType
	BaselineProbability types.Rating
	BaselineImpact      types.Rating
	RecommendedControls []string
	Sectors             []string
}

// ThreatFilter narrows ListThreats. Zero values match everything.
type ThreatFilter struct {
	Category   types.ThreatCategory
	NIS2Type   types.NIS2IncidentType
	Sector     string
	SearchText string
}

type ThreatUseCase struct {
	repo      interfaces.Repository
	committer *committer
}

func NewThreatUseCase(repo interfaces.Repository, committer *committer) *ThreatUseCase {
	return &ThreatUseCase{
		repo:      repo,
		committer: committer,
	}
}

func (input ThreatInput) apply(threat *model.Threat) {
	threat.Name = strings.TrimSpace(input.Name)
	threat.Description = strings.TrimSpace(input.Description)
	threat.Category = input.Category
	threat.NIS2Type = input.NIS2Type
	threat.BaselineProbability = input.BaselineProbability
	threat.BaselineImpact = input.BaselineImpact
	threat.RecommendedControls = cleanList(input.RecommendedControls)
	threat.Sectors = cleanList(input.Sectors)
}

// CreateCustomThreat validates the form before any I/O and stores the threat
// for the organization in context
func (uc *ThreatUseCase) CreateCustomThreat(ctx context.Context, input ThreatInput) (*model.Threat, error) {
	threat := &model.Threat{
		ID:       model.NewCustomThreatID(),
		IsCustom: true,
	}
	input.apply(threat)
	if err := threat.Validate(); err != nil {
		return nil, err
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}
	threat.OrganizationID = orgID

	created, err := uc.repo.Threat().Create(ctx, threat)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create custom threat", goerr.V(ThreatIDKey, threat.ID))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionCreate,
		After:          created,
	})

	logging.From(ctx).Info("custom threat created", "threat_id", created.ID, "organization_id", orgID)
	return created, nil
}

// UpdateCustomThreat replaces the content of a custom threat owned by the
// organization in context
func (uc *ThreatUseCase) UpdateCustomThreat(ctx context.Context, id types.ThreatID, input ThreatInput) (*model.Threat, error) {
	draft := &model.Threat{ID: id, IsCustom: true}
	input.apply(draft)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := uc.getOwnedCustom(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	input.apply(&updated)

	saved, err := uc.repo.Threat().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update custom threat", goerr.V(ThreatIDKey, id))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionUpdate,
		Before:         existing,
		After:          saved,
	})

	return saved, nil
}

// CheckThreatDeletion returns how many risks of the organization reference the threat
func (uc *ThreatUseCase) CheckThreatDeletion(ctx context.Context, id types.ThreatID) (int, error) {
	orgID, err := organizationID(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := uc.getOwnedCustom(ctx, orgID, id); err != nil {
		return 0, err
	}

	count, err := uc.repo.Risk().CountByThreat(ctx, orgID, id)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count risks referencing threat", goerr.V(ThreatIDKey, id))
	}
	return count, nil
}

// DeleteCustomThreat deletes an unreferenced custom threat. The reference
// check runs again here; check and delete are not atomic, so a risk created
// in between is not detected.
func (uc *ThreatUseCase) DeleteCustomThreat(ctx context.Context, id types.ThreatID, confirmed bool) error {
	orgID, err := organizationID(ctx)
	if err != nil {
		return err
	}

	existing, err := uc.getOwnedCustom(ctx, orgID, id)
	if err != nil {
		return err
	}

	count, err := uc.repo.Risk().CountByThreat(ctx, orgID, id)
	if err != nil {
		return goerr.Wrap(err, "failed to count risks referencing threat", goerr.V(ThreatIDKey, id))
	}
	if count > 0 {
		return goerr.Wrap(ErrThreatInUse,
			fmt.Sprintf("threat %s is used by %d risks", id, count),
			goerr.V(ThreatIDKey, id), goerr.V(ReferenceCountKey, count))
	}

	if !confirmed {
		return goerr.Wrap(ErrConfirmationRequired, "threat deletion must be confirmed", goerr.V(ThreatIDKey, id))
	}

	if err := uc.repo.Threat().Delete(ctx, orgID, id); err != nil {
		return goerr.Wrap(err, "failed to delete custom threat", goerr.V(ThreatIDKey, id))
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionDelete,
		Before:         existing,
	})

	return nil
}

// GetThreat returns a shared threat or a custom threat of the organization in context
func (uc *ThreatUseCase) GetThreat(ctx context.Context, id types.ThreatID) (*model.Threat, error) {
	orgID, _ := model.OrganizationIDFromContext(ctx)

	threat, err := uc.repo.Threat().Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get threat", goerr.V(ThreatIDKey, id))
	}
	return threat, nil
}

// ListThreats returns the shared catalog plus the custom threats of the
// organization in context matching every filter, ordered by ID
func (uc *ThreatUseCase) ListThreats(ctx context.Context, filter ThreatFilter) ([]*model.Threat, error) {
	orgID, _ := model.OrganizationIDFromContext(ctx)

	var opts []interfaces.ListThreatOption
	if filter.Category != "" {
		opts = append(opts, interfaces.WithCategory(filter.Category))
	}
	if filter.NIS2Type != "" {
		opts = append(opts, interfaces.WithNIS2Type(filter.NIS2Type))
	}

	threats, err := uc.repo.Threat().List(ctx, orgID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list threats")
	}

	result := make([]*model.Threat, 0, len(threats))
	for _, threat := range threats {
		if !threat.AppliesToSector(filter.Sector) || !threat.MatchesText(filter.SearchText) {
			continue
		}
		result = append(result, threat)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// SeedCatalog validates and upserts shared catalog entries
func (uc *ThreatUseCase) SeedCatalog(ctx context.Context, threats []*model.Threat) error {
	seen := make(map[types.ThreatID]struct{}, len(threats))
	for _, threat := range threats {
		if err := threat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid catalog entry", goerr.V(ThreatIDKey, threat.ID))
		}
		if strings.HasPrefix(threat.ID.String(), model.CustomThreatIDPrefix+"-") {
			return goerr.Wrap(model.ErrValidation, "catalog entries cannot use the custom prefix", goerr.V(ThreatIDKey, threat.ID))
		}
		if _, dup := seen[threat.ID]; dup {
			return goerr.Wrap(model.ErrValidation, "duplicated catalog entry", goerr.V(ThreatIDKey, threat.ID))
		}
		seen[threat.ID] = struct{}{}
	}

	if err := uc.repo.Threat().PutShared(ctx, threats); err != nil {
		return goerr.Wrap(err, "failed to seed threat catalog", goerr.V("count", len(threats)))
	}

	logging.From(ctx).Info("threat catalog seeded", "count", len(threats))
	return nil
}

func (uc *ThreatUseCase) getOwnedCustom(ctx context.Context, orgID string, id types.ThreatID) (*model.Threat, error) {
	threat, err := uc.repo.Threat().Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrThreatNotFound, "threat not found", goerr.V(ThreatIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get threat", goerr.V(ThreatIDKey, id))
	}

	if !threat.IsCustom || threat.OrganizationID != orgID {
		return nil, goerr.Wrap(ErrNotCustomThreat, "threat is not a custom threat of the organization",
			goerr.V(ThreatIDKey, id), goerr.V(OrganizationIDKey, orgID))
	}
	return threat, nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order
func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
