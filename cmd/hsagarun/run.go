package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/hsaga/internal/obslog"
	"github.com/dshills/hsaga/internal/obsmetrics"
	"github.com/dshills/hsaga/pkg/defaulteval"
	"github.com/dshills/hsaga/pkg/orchestrator"
	"github.com/dshills/hsaga/pkg/runconfig"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one optimization against a YAML problem configuration",
	Args:  cobra.NoArgs,
	RunE:  runOptimize,
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	if cfgFile == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := runconfig.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger := obslog.New(obslog.Config{Level: level, Output: os.Stderr})
	metrics := obsmetrics.New()

	var stopMetrics func()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error(err, "metrics server stopped", nil)
			}
		}()
		stopMetrics = func() { _ = server.Close() }
		logger.Info("serving metrics", map[string]any{"addr": metricsAddr})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received interrupt, cancelling run", nil)
		cancel()
	}()
	defer cancel()
	if stopMetrics != nil {
		defer stopMetrics()
	}

	eval := defaulteval.New(cfg.Buildings, defaulteval.Weights(cfg.Weights), cfg.Compliance.MinDistance)

	spec := &orchestrator.ProblemSpec{
		ProblemID:         cfg.ProblemID,
		Buildings:         cfg.Buildings,
		Site:              &cfg.Site,
		Eval:              eval,
		SAConfig:          cfg.SAConfig(),
		GAConfig:          cfg.GAConfig(),
		Weights:           cfg.Weights,
		WallClockBudgetMS: budgetMS,
	}
	if cmd.Flags().Changed("seed") {
		spec.RNGSeed = &seedFlag
	} else if cfg.Seed != nil {
		spec.RNGSeed = cfg.Seed
	}
	if spec.WallClockBudgetMS == 0 {
		spec.WallClockBudgetMS = cfg.WallClockBudgetMS
	}

	orch := orchestrator.New()
	orch.Logger = logger
	orch.Metrics = metrics
	orch.RunRobustness = cfg.RunRobustness

	logger.Info("starting run", map[string]any{"problem_id": cfg.ProblemID, "buildings": len(cfg.Buildings)})
	bundle, err := orch.Run(ctx, spec)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	logger.Info("run finished", map[string]any{
		"cancelled":      bundle.Cancelled,
		"best_fitness":   bundle.BestSolution.Fitness,
		"sa_time_ms":     bundle.Timing.SATimeMS,
		"ga_time_ms":     bundle.Timing.GATimeMS,
		"diagnostics":    len(bundle.Diagnostics),
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}
