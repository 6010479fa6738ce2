package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool
	var allowDestructive bool

	flags := repoCfg.FirestoreFlags()
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "allow-destructive",
			Usage:       "Apply plans that drop existing indexes",
			Destination: &allowDestructive,
		},
	)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore composite indexes used by list queries",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			projectID, databaseID, err := repoCfg.FirestoreTarget()
			if err != nil {
				return err
			}
			logger := logging.Default().With("project_id", projectID, "database_id", databaseID)

			indexConfig := getIndexConfig()

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			plan, err := client.GetMigrationPlan(ctx, indexConfig)
			if err != nil {
				return goerr.Wrap(err, "failed to create migration plan")
			}
			if len(plan.Steps) == 0 {
				logger.Info("Indexes are up to date")
				return nil
			}

			destructive := 0
			for _, step := range plan.Steps {
				if step.Destructive {
					destructive++
				}
				logger.Info("Planned index change",
					"collection", step.Collection,
					"operation", step.Operation,
					"description", step.Description,
					"destructive", step.Destructive)
			}

			if dryRun {
				return nil
			}
			if destructive > 0 && !allowDestructive {
				return goerr.New("migration plan drops indexes, rerun with --allow-destructive",
					goerr.V("destructive_steps", destructive))
			}

			if err := client.Migrate(ctx, indexConfig); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Indexes migrated", "steps", len(plan.Steps))
			return nil
		},
	}
}

// getIndexConfig returns the composite indexes used by filtered list queries.
// Documents are stored with Go field names, so paths are capitalized.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "threats",
				Indexes: []fireconf.Index{
					// List with category and NIS2 type filters
					{
						Fields: []fireconf.IndexField{
							{Path: "Category", Order: fireconf.OrderAscending},
							{Path: "NIS2Type", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "improvement_actions",
				Indexes: []fireconf.Index{
					// ListBySource
					{
						Fields: []fireconf.IndexField{
							{Path: "Source", Order: fireconf.OrderAscending},
							{Path: "SourceID", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "audit_logs",
				Indexes: []fireconf.Index{
					// List by entity
					{
						Fields: []fireconf.IndexField{
							{Path: "EntityType", Order: fireconf.OrderAscending},
							{Path: "EntityID", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
