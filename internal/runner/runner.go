// Package runner executes one ingestion run across every configured
// provider pipeline.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/telemetry"
)

var tracer = telemetry.Tracer("jobsignal/runner")

// Policy decides whether a run with some failed providers is a failure.
type Policy string

const (
	// PolicyFail fails the run when any provider fails. Batches written by
	// providers that succeeded stay written.
	PolicyFail Policy = "fail"
	// PolicyTolerate fails the run only when every provider fails.
	PolicyTolerate Policy = "tolerate"
)

// ParsePolicy validates a policy name; empty means PolicyFail.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyTolerate:
		return PolicyTolerate, nil
	}
	return "", fmt.Errorf("unknown partial failure policy %q (want fail or tolerate)", s)
}

// Pipeline is one provider's batch pass.
type Pipeline interface {
	Name() string
	Run(ctx context.Context, runID, ingestTS string) (model.BatchSummary, error)
}

// ProviderFailure records why one provider did not complete.
type ProviderFailure struct {
	Source string
	Err    error
}

// RunReport is the outcome of one run. Summaries and Failures follow the
// order pipelines were given in.
type RunReport struct {
	RunID     string
	IngestTS  string
	Summaries []model.BatchSummary
	Failures  []ProviderFailure
}

// RunError is returned when the policy judges a run failed. It wraps every
// provider error, so errors.As can reach typed causes.
type RunError struct {
	Failed []string
	Total  int
	err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%d of %d providers failed (%s): %v",
		len(e.Failed), e.Total, strings.Join(e.Failed, ", "), e.err)
}

func (e *RunError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Runner stamps the run, fans out to pipelines and applies the policy.
type Runner struct {
	pipelines []Pipeline
	policy    Policy
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func New(pipelines []Pipeline, policy Policy, logger *zap.Logger) *Runner {
	return &Runner{
		pipelines: pipelines,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// IngestTS formats t as a run timestamp.
func IngestTS(t time.Time) string {
	return t.UTC().Format(model.IngestTSLayout)
}

// Run executes every pipeline concurrently with one shared ingest_ts. A
// failing provider never cancels the others. The report is always returned;
// the error is non-nil when the policy judges the run failed.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		RunID:    r.newID(),
		IngestTS: IngestTS(r.now()),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID), zap.String("ingest_ts", report.IngestTS))

	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()
	span.SetAttributes(
		telemetry.String("run_id", report.RunID),
		telemetry.Int("providers", len(r.pipelines)),
	)

	logger.Info("starting run", zap.Int("providers", len(r.pipelines)), zap.String("policy", string(r.policy)))

	type outcome struct {
		summary model.BatchSummary
		err     error
	}
	outcomes := make([]outcome, len(r.pipelines))

	// Plain Group: no shared cancellation between providers.
	var g errgroup.Group
	for i, p := range r.pipelines {
		g.Go(func() error {
			summary, err := p.Run(ctx, report.RunID, report.IngestTS)
			outcomes[i] = outcome{summary: summary, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	for i, o := range outcomes {
		name := r.pipelines[i].Name()
		if o.err != nil {
			report.Failures = append(report.Failures, ProviderFailure{Source: name, Err: o.err})
			combined = multierr.Append(combined, o.err)
			continue
		}
		report.Summaries = append(report.Summaries, o.summary)
	}

	if len(report.Failures) == 0 {
		logger.Info("run complete", zap.Int("providers", len(report.Summaries)))
		return report, nil
	}

	failed := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		failed[i] = f.Source
	}
	runErr := &RunError{Failed: failed, Total: len(r.pipelines), err: combined}

	if r.policy == PolicyTolerate && len(report.Summaries) > 0 {
		for _, f := range report.Failures {
			logger.Warn("provider failed, continuing", zap.String("source", f.Source), zap.Error(f.Err))
		}
		return report, nil
	}

	span.RecordError(runErr)
	for _, f := range report.Failures {
		logger.Error("provider failed", zap.String("source", f.Source), zap.Error(f.Err))
	}
	return report, runErr
}
