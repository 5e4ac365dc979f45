package writer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

const clickhouseTable = "enriched_postings"

// clickhouseSchema keeps the latest copy of each job_uid; ReplacingMergeTree
// collapses re-ingested postings on merge.
const clickhouseSchema = `
	CREATE TABLE IF NOT EXISTS enriched_postings (
		job_uid String,
		ingest_ts DateTime64(3, 'UTC'),
		source LowCardinality(String),
		source_job_id Nullable(String),
		source_url Nullable(String),
		title Nullable(String),
		company Nullable(String),
		location_raw Nullable(String),
		country LowCardinality(String),
		date_posted Nullable(String),
		date_expires Nullable(String),
		description_clean String,
		ai_keywords_found Array(String),
		offshoring_keywords_found Array(String),
		ai_score UInt16,
		offshoring_score UInt16,
		ai_signal_level LowCardinality(String),
		offshoring_signal_level LowCardinality(String)
	) ENGINE = ReplacingMergeTree(ingest_ts)
	PARTITION BY toYYYYMM(ingest_ts)
	ORDER BY (source, job_uid)
`

// ClickHouseOptions configures the analytics sink connection.
type ClickHouseOptions struct {
	DSN      string
	Username string
	Password string
	Database string
}

// ClickHouseSink appends enriched postings to an analytics table.
type ClickHouseSink struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

// NewClickHouseSink opens and pings a native-protocol connection and makes
// sure the table exists.
func NewClickHouseSink(ctx context.Context, opts ClickHouseOptions, logger *zap.Logger) (*ClickHouseSink, error) {
	host := strings.SplitN(opts.DSN, "?", 2)[0]
	host = strings.TrimPrefix(host, "clickhouse://")

	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{host},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}
	if err := conn.Exec(ctx, clickhouseSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating %s table: %w", clickhouseTable, err)
	}
	return &ClickHouseSink{conn: conn, logger: logger}, nil
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) WriteBatch(ctx context.Context, batch model.Batch) (string, error) {
	if len(batch.Results) == 0 {
		return "", nil
	}
	ts, err := parseIngestTS(batch.IngestTS)
	if err != nil {
		return "", err
	}

	b, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+clickhouseTable)
	if err != nil {
		return "", fmt.Errorf("preparing clickhouse batch: %w", err)
	}
	for _, rec := range batch.Results {
		if err := b.Append(clickhouseRow(rec, ts)...); err != nil {
			_ = b.Abort()
			return "", fmt.Errorf("appending %s: %w", rec.JobUID, err)
		}
	}
	if err := b.Send(); err != nil {
		return "", fmt.Errorf("sending clickhouse batch: %w", err)
	}

	s.logger.Debug("wrote clickhouse batch",
		zap.String("source", batch.Source),
		zap.Int("rows", len(batch.Results)),
	)
	return fmt.Sprintf("clickhouse:%s (%d rows)", clickhouseTable, len(batch.Results)), nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}

// clickhouseRow returns column values in table order.
func clickhouseRow(rec model.EnrichedPosting, ts time.Time) []any {
	sig := rec.KeywordSignals
	return []any{
		rec.JobUID,
		ts,
		rec.Source,
		rec.SourceJobID,
		rec.SourceURL,
		rec.Title,
		rec.Company,
		rec.LocationRaw,
		rec.Country,
		rec.DatePosted,
		rec.DateExpires,
		rec.DescriptionClean,
		nonNil(sig.AIKeywordsFound),
		nonNil(sig.OffshoringKeywordsFound),
		uint16(sig.AIScore),
		uint16(sig.OffshoringScore),
		string(sig.AISignalLevel),
		string(sig.OffshoringSignalLevel),
	}
}

func parseIngestTS(s string) (time.Time, error) {
	ts, err := time.Parse(model.IngestTSLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing ingest_ts %q: %w", s, err)
	}
	return ts.UTC(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
