package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	httpctrl "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var defaultOrgID string
	var sessionIdle time.Duration
	var displayLimit int
	var skipSeed bool
	var repoCfg config.Repository
	var catalogCfg config.Catalog

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("THEMIS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "default-organization-id",
			Usage:       "Bind requests without the X-Organization-ID header to this organization. For single-tenant deployments only",
			Sources:     cli.EnvVars("THEMIS_DEFAULT_ORGANIZATION_ID"),
			Destination: &defaultOrgID,
		},
		&cli.DurationFlag{
			Name:        "session-idle-timeout",
			Usage:       "Discard evaluation sessions left untouched for this long",
			Value:       2 * time.Hour,
			Sources:     cli.EnvVars("THEMIS_SESSION_IDLE_TIMEOUT"),
			Destination: &sessionIdle,
		},
		&cli.IntFlag{
			Name:        "suggestion-limit",
			Usage:       "Number of entries displayed per suggestion list",
			Value:       5,
			Sources:     cli.EnvVars("THEMIS_SUGGESTION_LIMIT"),
			Destination: &displayLimit,
		},
		&cli.BoolFlag{
			Name:        "skip-catalog-seed",
			Usage:       "Do not upsert the threat catalog into the repository on start",
			Sources:     cli.EnvVars("THEMIS_SKIP_CATALOG_SEED"),
			Destination: &skipSeed,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"repository", repoCfg,
				"catalog", catalogCfg,
				"default_organization_id", defaultOrgID,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithDisplayLimit(displayLimit))

			if !skipSeed {
				threats, err := catalogCfg.Load()
				if err != nil {
					return goerr.Wrap(err, "failed to load threat catalog")
				}
				if err := uc.Threat.SeedCatalog(ctx, threats); err != nil {
					return goerr.Wrap(err, "failed to seed threat catalog")
				}
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithSessionIdleTimeout(sessionIdle),
			}
			if defaultOrgID != "" {
				logging.Default().Warn("Requests without organization header are bound to the default organization",
					"default_organization_id", defaultOrgID,
				)
				httpOpts = append(httpOpts, httpctrl.WithDefaultOrganization(defaultOrgID))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logging.Default().Info("Context canceled, shutting down")
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
