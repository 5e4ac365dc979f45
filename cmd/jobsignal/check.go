package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/runner"
	"github.com/amishk599/jobsignal/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch and enrich once, print a signal summary, write nothing",
	Long:  "One-shot dry run: fetches one page per enabled provider and prints the postings with signals. Does not touch the ledger or any sink.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// printingSink captures batches for display instead of persisting them.
type printingSink struct {
	mu      sync.Mutex
	batches map[string]model.Batch
}

func (s *printingSink) Name() string { return "stdout" }

func (s *printingSink) WriteBatch(_ context.Context, b model.Batch) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.Source] = b
	return "", nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	logger.Info("check mode: nothing will be recorded or written")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink := &printingSink{batches: make(map[string]model.Batch)}
	pipelines := buildPipelines(cfg, newHTTPClient(cfg), store.NewNopStore(),
		[]model.BatchWriter{sink}, nil, logger)

	report, runErr := runner.New(pipelines, runner.PolicyTolerate, logger).Run(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range report.Summaries {
		fmt.Fprintf(w, "\n%s: %d fetched, %d with AI signal, %d with offshoring signal\n",
			s.Source, s.Fetched, s.AISignals, s.OffshoringSignals)
		fmt.Fprintln(w, "AI\tOFFSHORING\tTITLE\tKEYWORDS")
		for _, p := range sink.batches[s.Source].Results {
			if !p.Flagged(model.SignalLow) {
				continue
			}
			sig := p.KeywordSignals
			keywords := append(append([]string{}, sig.AIKeywordsFound...), sig.OffshoringKeywordsFound...)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sig.AISignalLevel, sig.OffshoringSignalLevel,
				truncate(derefOr(p.Title, "(untitled)"), 60), strings.Join(keywords, ", "))
		}
	}
	w.Flush()

	for _, f := range report.Failures {
		logger.Warn("provider failed", zap.String("source", f.Source), zap.Error(f.Err))
	}
	if runErr != nil {
		return fail(logger, "check failed", runErr)
	}
	logger.Info("check complete")
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
