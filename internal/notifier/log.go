package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes batch summaries to the given logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the summary as one structured line. It never fails.
func (n *LogNotifier) Notify(_ context.Context, s model.BatchSummary) error {
	n.logger.Info("batch ingested",
		zap.String("run_id", s.RunID),
		zap.String("source", s.Source),
		zap.String("ingest_ts", s.IngestTS),
		zap.Int("fetched", s.Fetched),
		zap.Int("enriched", s.Enriched),
		zap.Int("new", s.New),
		zap.Int("ai_signals", s.AISignals),
		zap.Int("offshoring_signals", s.OffshoringSignals),
		zap.Strings("locations", s.Locations),
	)
	return nil
}
