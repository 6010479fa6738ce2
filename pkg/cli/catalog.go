package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdCatalog() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the shared threat catalog",
		Commands: []*cli.Command{
			cmdCatalogValidate(),
			cmdCatalogSeed(),
		},
	}
}

func cmdCatalogValidate() *cli.Command {
	var catalogCfg config.Catalog

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a threat catalog file",
		Flags:   catalogCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			threats, err := catalogCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "catalog validation failed")
			}

			perCategory := make(map[types.ThreatCategory]int)
			for _, threat := range threats {
				perCategory[threat.Category]++
			}

			logger := logging.Default()
			logger.Info("Catalog validation passed", "catalog", catalogCfg, "threat_count", len(threats))
			for _, category := range types.AllThreatCategories() {
				if perCategory[category] == 0 {
					logger.Warn("No threat in category", "category", category.String())
				}
			}
			return nil
		},
	}
}

func cmdCatalogSeed() *cli.Command {
	var catalogCfg config.Catalog
	var repoCfg config.Repository

	flags := catalogCfg.Flags()
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Upsert the threat catalog into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			threats, err := catalogCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load threat catalog")
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

			uc := usecase.New(repo)
			return uc.Threat.SeedCatalog(ctx, threats)
		},
	}
}
