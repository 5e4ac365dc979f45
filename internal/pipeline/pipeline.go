// Package pipeline runs one provider's batch pass: fetch, enrich, record in
// the ledger, persist and announce.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/enrich"
	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/telemetry"
)

var tracer = telemetry.Tracer("jobsignal/pipeline")

// ProviderPipeline owns the full batch pipeline for a single provider:
// fetch → assemble → ledger → sinks → notify.
type ProviderPipeline struct {
	provider  model.Provider
	query     model.Query
	assembler *enrich.Assembler
	ledger    model.SeenStore
	sinks     []model.BatchWriter
	notifier  model.Notifier
	logger    *zap.Logger
}

// NewProviderPipeline creates a pipeline wired with all its dependencies.
// notifier may be nil.
func NewProviderPipeline(
	provider model.Provider,
	query model.Query,
	assembler *enrich.Assembler,
	ledger model.SeenStore,
	sinks []model.BatchWriter,
	notifier model.Notifier,
	logger *zap.Logger,
) *ProviderPipeline {
	return &ProviderPipeline{
		provider:  provider,
		query:     query,
		assembler: assembler,
		ledger:    ledger,
		sinks:     sinks,
		notifier:  notifier,
		logger:    logger.With(zap.String("source", provider.Name())),
	}
}

func (p *ProviderPipeline) Name() string { return p.provider.Name() }

// Run executes one batch pass. Fetch, ledger and sink errors abort the
// provider; notifier errors are logged only. Sinks that already succeeded
// when a later one fails keep what they wrote.
func (p *ProviderPipeline) Run(ctx context.Context, runID, ingestTS string) (model.BatchSummary, error) {
	name := p.provider.Name()
	ctx, span := tracer.Start(ctx, "ProviderPipeline.Run")
	defer span.End()
	span.SetAttributes(telemetry.String("source", name), telemetry.String("run_id", runID))

	summary := model.BatchSummary{RunID: runID, Source: name, IngestTS: ingestTS}

	fail := func(err error) (model.BatchSummary, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return summary, err
	}

	items, err := p.provider.Fetch(ctx, p.query)
	if err != nil {
		return fail(fmt.Errorf("running %s: %w", name, err))
	}
	summary.Fetched = len(items)

	records, err := p.assembler.AssembleAll(ctx, items, p.provider, ingestTS)
	if err != nil {
		return fail(fmt.Errorf("running %s: assembling: %w", name, err))
	}
	summary.Enriched = len(records)

	for _, rec := range records {
		if rec.KeywordSignals.AISignalLevel.Rank() >= model.SignalMedium.Rank() {
			summary.AISignals++
		}
		if rec.KeywordSignals.OffshoringSignalLevel.Rank() >= model.SignalMedium.Rank() {
			summary.OffshoringSignals++
		}
	}

	newCount, err := p.record(ctx, records)
	if err != nil {
		return fail(fmt.Errorf("running %s: %w", name, err))
	}
	summary.New = newCount

	batch := model.Batch{IngestTS: ingestTS, Source: name, Results: records}
	for _, sink := range p.sinks {
		loc, err := sink.WriteBatch(ctx, batch)
		if err != nil {
			return fail(fmt.Errorf("running %s: %s sink: %w", name, sink.Name(), err))
		}
		if loc != "" {
			summary.Locations = append(summary.Locations, loc)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, summary); err != nil {
			p.logger.Warn("notify failed", zap.Error(err))
		}
	}

	span.SetAttributes(
		telemetry.Int("fetched", summary.Fetched),
		telemetry.Int("new", summary.New),
	)
	p.logger.Info("provider batch complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("enriched", summary.Enriched),
		zap.Int("new", summary.New),
		zap.Int("ai_signals", summary.AISignals),
		zap.Int("offshoring_signals", summary.OffshoringSignals),
	)
	return summary, nil
}

// record checks each job_uid against the ledger and marks it seen,
// returning how many were not seen before. Duplicate uids within one batch
// count once.
func (p *ProviderPipeline) record(ctx context.Context, records []model.EnrichedPosting) (int, error) {
	name := p.provider.Name()
	newCount := 0
	for _, rec := range records {
		seen, err := p.ledger.HasSeen(ctx, rec.JobUID)
		if err != nil {
			return 0, fmt.Errorf("checking seen status: %w", err)
		}
		if seen {
			continue
		}
		if err := p.ledger.MarkSeen(ctx, rec.JobUID, name); err != nil {
			return 0, fmt.Errorf("marking seen: %w", err)
		}
		newCount++
	}
	return newCount, nil
}
