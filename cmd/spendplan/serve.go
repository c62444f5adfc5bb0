package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spendplan/internal/cli"
	apphttp "spendplan/internal/http"
	applog "spendplan/internal/log"
	"spendplan/internal/metrics"
	"spendplan/internal/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}

	seed, err := services.LoadSeed(cfg.SeedPlanFile, time.Now())
	if err != nil {
		logger.Error("Failed to load seed plan", applog.FieldError, err, applog.FieldOperation, applog.OpSeed)
		return err
	}

	m := metrics.New()
	plans := services.NewPlanService(seed,
		services.WithLogger(logger),
		services.WithMetrics(m),
		services.WithAppVersion(cfg.AppVersion),
	)
	srv := apphttp.NewServer(cfg.Addr(), plans, apphttp.Options{
		Logger:             logger,
		Metrics:            m,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	_, done := cli.GracefulShutdown(ctx, logger, cfg.ShutdownTimeout, srv.Shutdown)

	var g errgroup.Group
	g.Go(func() error {
		// Ends the shutdown watcher too when the listener fails on its own
		defer cancel()
		logger.Info("Starting spendplan server",
			"port", cfg.Port,
			applog.FieldPlanID, seed.Plan.ID,
			applog.FieldCategoryCount, len(seed.Categories),
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
		}
		return nil
	})
	g.Go(func() error {
		<-done
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
