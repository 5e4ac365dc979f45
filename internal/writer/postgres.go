package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/model"
)

const postgresBatchSize = 200

// PostgresSink inserts enriched postings into <schema>.enriched_postings,
// skipping job_uids that are already present.
type PostgresSink struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

// NewPostgresSink connects, then creates the schema and table if missing.
func NewPostgresSink(ctx context.Context, dsn, schema string, logger *zap.Logger) (*PostgresSink, error) {
	if schema == "" {
		schema = "public"
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing PG_DSN: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := &PostgresSink{pool: pool, schema: schema, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) table() string {
	return pgx.Identifier{s.schema, "enriched_postings"}.Sanitize()
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{s.schema}.Sanitize(),
		`CREATE TABLE IF NOT EXISTS ` + s.table() + ` (
			job_uid                   TEXT PRIMARY KEY,
			ingest_ts                 TIMESTAMPTZ NOT NULL,
			source                    TEXT NOT NULL,
			source_job_id             TEXT,
			source_url                TEXT,
			title                     TEXT,
			company                   TEXT,
			location_raw              TEXT,
			country                   TEXT NOT NULL,
			date_posted               TEXT,
			date_expires              TEXT,
			description_clean         TEXT NOT NULL,
			ai_keywords_found         TEXT[] NOT NULL,
			offshoring_keywords_found TEXT[] NOT NULL,
			ai_score                  INTEGER NOT NULL,
			offshoring_score          INTEGER NOT NULL,
			ai_signal_level           TEXT NOT NULL,
			offshoring_signal_level   TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrating postgres: %w", err)
		}
	}
	return nil
}

func (s *PostgresSink) Name() string { return "postgres" }

// WriteBatch queues inserts in chunks; re-ingested job_uids are ignored.
func (s *PostgresSink) WriteBatch(ctx context.Context, batch model.Batch) (string, error) {
	ts, err := parseIngestTS(batch.IngestTS)
	if err != nil {
		return "", err
	}
	query := postgresInsert(s.table())

	inserted := 0
	for i := 0; i < len(batch.Results); i += postgresBatchSize {
		j := min(i+postgresBatchSize, len(batch.Results))

		b := &pgx.Batch{}
		for _, rec := range batch.Results[i:j] {
			b.Queue(query, postgresArgs(rec, ts)...)
		}
		br := s.pool.SendBatch(ctx, b)
		for k := i; k < j; k++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return "", fmt.Errorf("inserting %s: %w", batch.Results[k].JobUID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return "", fmt.Errorf("closing postgres batch: %w", err)
		}
	}

	s.logger.Debug("wrote postgres batch",
		zap.String("source", batch.Source),
		zap.Int("rows", len(batch.Results)),
		zap.Int("inserted", inserted),
	)
	return fmt.Sprintf("postgres:%s.enriched_postings (%d inserted)", s.schema, inserted), nil
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

func postgresInsert(table string) string {
	return `INSERT INTO ` + table + `
		(job_uid, ingest_ts, source, source_job_id, source_url, title, company,
		 location_raw, country, date_posted, date_expires, description_clean,
		 ai_keywords_found, offshoring_keywords_found, ai_score, offshoring_score,
		 ai_signal_level, offshoring_signal_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (job_uid) DO NOTHING`
}

// postgresArgs returns the insert arguments; nil pointers become NULL.
func postgresArgs(rec model.EnrichedPosting, ts time.Time) []any {
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
		sig.AIScore,
		sig.OffshoringScore,
		string(sig.AISignalLevel),
		string(sig.OffshoringSignalLevel),
	}
}
