package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

type SuggestionUseCase struct {
	repo         interfaces.Repository
	committer    *committer
	clock        func() time.Time
	displayLimit int
}

func NewSuggestionUseCase(repo interfaces.Repository, committer *committer, clock func() time.Time, displayLimit int) *SuggestionUseCase {
	return &SuggestionUseCase{
		repo:         repo,
		committer:    committer,
		clock:        clock,
		displayLimit: displayLimit,
	}
}

// DisplayLimit is the number of entries of each list shown to the operator
func (uc *SuggestionUseCase) DisplayLimit() int {
	return uc.displayLimit
}

// Suggest computes the audit scope candidates of the organization in context.
// The returned bundle holds the full lists; use Display to truncate them.
func (uc *SuggestionUseCase) Suggest(ctx context.Context) (*model.SuggestionBundle, error) {
	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		controls []*model.Control
		risks    []*model.Risk
		ncs      []*model.NonConformity
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		if controls, err = uc.repo.Control().List(egCtx, orgID); err != nil {
			return goerr.Wrap(err, "failed to list controls")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if risks, err = uc.repo.Risk().List(egCtx, orgID); err != nil {
			return goerr.Wrap(err, "failed to list risks")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if ncs, err = uc.repo.NonConformity().List(egCtx, orgID); err != nil {
			return goerr.Wrap(err, "failed to list non-conformities")
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load suggestion sources", goerr.V(OrganizationIDKey, orgID))
	}

	return model.BuildSuggestions(uc.clock(), controls, risks, ncs), nil
}

// ProposeAudit stores a planned audit whose scope is the merged, untruncated
// suggestion lists
func (uc *SuggestionUseCase) ProposeAudit(ctx context.Context, title string, plannedDate *time.Time) (*model.Audit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, goerr.Wrap(model.ErrMissingRequired, "audit title is required", goerr.V(model.FieldKey, "title"))
	}

	orgID, err := organizationID(ctx)
	if err != nil {
		return nil, err
	}

	bundle, err := uc.Suggest(ctx)
	if err != nil {
		return nil, err
	}

	audit := &model.Audit{
		Title:        title,
		ControlScope: bundle.ControlScope(),
		PlannedDate:  plannedDate,
		Status:       types.AuditStatusPlanned,
	}

	if n, err := uc.repo.Sequence().Next(ctx, orgID, types.SequenceAudit); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to generate audit code"), "audit saved without code")
	} else {
		audit.Code = model.FormatSequenceCode(types.SequenceAudit, n)
	}

	created, err := uc.repo.Audit().Create(ctx, orgID, audit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create audit")
	}

	uc.committer.committed(ctx, model.Change{
		OrganizationID: orgID,
		Action:         types.AuditActionCreate,
		After:          created,
	})

	return created, nil
}
