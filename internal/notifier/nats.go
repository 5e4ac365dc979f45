package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/telemetry"
)

// DefaultSubject is where batch events are published unless overridden.
const DefaultSubject = "jobs.enriched"

var tracer = telemetry.Tracer("jobsignal/notifier")

// Ensure NATSNotifier implements model.Notifier.
var _ model.Notifier = (*NATSNotifier)(nil)

// publisher is the subset of *nats.Conn the notifier uses.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes each batch summary as a JSON event so downstream
// consumers can pick up fresh batches.
type NATSNotifier struct {
	conn    publisher
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSNotifier connects to the server at url.
func NewNATSNotifier(url, subject string, logger *zap.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("jobsignal"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	n := newNATSNotifier(nc, subject, logger)
	n.nc = nc
	return n, nil
}

func newNATSNotifier(conn publisher, subject string, logger *zap.Logger) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{conn: conn, subject: subject, logger: logger}
}

func (n *NATSNotifier) Notify(ctx context.Context, s model.BatchSummary) error {
	_, span := tracer.Start(ctx, "PublishBatchSummary")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling batch event: %w", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", n.subject),
		telemetry.String("source", s.Source),
		telemetry.Int("message.size", len(data)),
	)

	if err := n.conn.Publish(n.subject, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publishing to %s: %w", n.subject, err)
	}

	n.logger.Debug("published batch event",
		zap.String("subject", n.subject),
		zap.String("source", s.Source),
		zap.String("run_id", s.RunID),
	)
	return nil
}

// Close drains pending publishes and closes the connection.
func (n *NATSNotifier) Close() error {
	if n.nc == nil {
		return nil
	}
	return n.nc.Drain()
}
