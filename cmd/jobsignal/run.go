package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/runner"
	"github.com/amishk599/jobsignal/internal/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch ingestion across all enabled providers",
	Long: "Fetches one page per enabled provider, enriches every posting, records it in the\n" +
		"ledger, writes the batch to every sink and announces the summary.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	logger.Info("config loaded",
		zap.Strings("providers", cfg.Providers),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("ledger", cfg.Ledger.Backend),
		zap.Int("workers", cfg.Workers),
		zap.String("partial_failure", cfg.PartialFailure),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitTracer(ctx, version, cfg.Telemetry.OTLPEndpoint, logger)
	if err != nil {
		return fail(logger, "failed to init tracing", err)
	}
	defer shutdown()

	var c closers
	defer c.closeAll(logger)

	httpClient := newHTTPClient(cfg)

	sinks, err := setupSinks(ctx, cfg, &c, logger)
	if err != nil {
		return fail(logger, "failed to set up sinks", err)
	}

	ledger, err := setupLedger(ctx, cfg, logger)
	if err != nil {
		return fail(logger, "failed to open ledger", err)
	}
	c.add(ledger.Close)

	n, err := setupNotifier(cfg, httpClient, &c, logger)
	if err != nil {
		return fail(logger, "failed to set up notifier", err)
	}

	pipelines := buildPipelines(cfg, httpClient, ledger, sinks, n, logger)
	if len(pipelines) == 0 {
		return fail(logger, "no providers to run", fmt.Errorf("no providers enabled"))
	}

	policy, err := runner.ParsePolicy(cfg.PartialFailure)
	if err != nil {
		return fail(logger, "invalid partial failure policy", err)
	}

	report, runErr := runner.New(pipelines, policy, logger).Run(ctx)
	for _, s := range report.Summaries {
		fmt.Fprintf(os.Stdout, "%s enriched jobs: %d (new: %d)\n", s.Source, s.Enriched, s.New)
	}
	if runErr != nil {
		return fail(logger, "run failed", runErr)
	}
	return nil
}
