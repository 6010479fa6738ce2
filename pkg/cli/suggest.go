package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSuggest() *cli.Command {
	var orgID string
	var limit int
	var auditTitle string
	var plannedDate string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "organization-id",
			Usage:       "Organization to build suggestions for",
			Required:    true,
			Sources:     cli.EnvVars("THEMIS_ORGANIZATION_ID"),
			Destination: &orgID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Number of entries displayed per list",
			Value:       model.DefaultSuggestionDisplayLimit,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "propose-audit",
			Usage:       "Create a planned audit with this title whose scope is the suggested controls",
			Destination: &auditTitle,
		},
		&cli.StringFlag{
			Name:        "planned-date",
			Usage:       "Planned date of the proposed audit (YYYY-MM-DD)",
			Destination: &plannedDate,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "suggest",
		Usage: "Show audit scope suggestions for an organization",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if limit < 1 {
				return goerr.New("limit must be positive", goerr.V("limit", limit))
			}

			var planned *time.Time
			if plannedDate != "" {
				d, err := time.Parse(time.DateOnly, plannedDate)
				if err != nil {
					return goerr.Wrap(err, "invalid planned date", goerr.V("planned_date", plannedDate))
				}
				planned = &d
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ctx = model.ContextWithOrganizationID(ctx, orgID)
			uc := usecase.New(repo, usecase.WithDisplayLimit(limit))

			bundle, err := uc.Suggestion.Suggest(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to build suggestions", goerr.V("organization_id", orgID))
			}

			w := c.Root().Writer
			printSuggestions(w, bundle, limit)

			if auditTitle == "" {
				return nil
			}
			audit, err := uc.Suggestion.ProposeAudit(ctx, auditTitle, planned)
			if err != nil {
				return goerr.Wrap(err, "failed to propose audit")
			}
			fmt.Fprintf(w, "\nProposed audit %s %q with %d controls\n", audit.Code, audit.Title, len(audit.ControlScope))
			return nil
		},
	}
}

var levelColors = map[types.RiskLevel]*color.Color{
	types.RiskLevelLow:      color.New(color.FgGreen),
	types.RiskLevelMedium:   color.New(color.FgYellow),
	types.RiskLevelHigh:     color.New(color.FgRed),
	types.RiskLevelCritical: color.New(color.FgRed, color.Bold),
}

func printSuggestions(w io.Writer, bundle *model.SuggestionBundle, limit int) {
	header := color.New(color.Bold)
	display := bundle.Display(limit)

	header.Fprintf(w, "Controls to verify (%d)\n", len(bundle.ControlsToVerify))
	for _, c := range display.ControlsToVerify {
		last := "never verified"
		if c.LastVerifiedAt != nil {
			last = "last verified " + c.LastVerifiedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "  %-8s %s (%s)\n", c.Reference, c.Name, last)
	}

	header.Fprintf(w, "High risks without treatment (%d)\n", len(bundle.HighRisksUnverified))
	for _, r := range display.HighRisksUnverified {
		level := r.InherentLevel.String()
		if c, ok := levelColors[r.InherentLevel]; ok {
			level = c.Sprint(level)
		}
		fmt.Fprintf(w, "  #%-6d %s score %d %s\n", r.ID, r.Name, r.InherentScore, level)
	}

	header.Fprintf(w, "Non-conformities to verify (%d)\n", len(bundle.NonConformitiesToVerify))
	for _, nc := range display.NonConformitiesToVerify {
		fmt.Fprintf(w, "  #%-6d %s", nc.ID, nc.Title)
		if nc.RelatedControl != "" {
			fmt.Fprintf(w, " [%s]", nc.RelatedControl)
		}
		fmt.Fprintln(w)
	}

	scope := bundle.ControlScope()
	header.Fprintf(w, "Audit scope (%d)\n", len(scope))
	if len(scope) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(scope, ", "))
	}
}
