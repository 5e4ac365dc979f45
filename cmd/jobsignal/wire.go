package main

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/adapter"
	"github.com/amishk599/jobsignal/internal/config"
	"github.com/amishk599/jobsignal/internal/enrich"
	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/notifier"
	"github.com/amishk599/jobsignal/internal/pipeline"
	"github.com/amishk599/jobsignal/internal/runner"
	"github.com/amishk599/jobsignal/internal/signal"
	"github.com/amishk599/jobsignal/internal/store"
	"github.com/amishk599/jobsignal/internal/writer"
)

// closers releases connections opened while wiring, last opened first.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll(logger *zap.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

// createProvider builds the adapter and search query for a provider name.
func createProvider(name string, cfg *config.Config, httpClient *http.Client) (model.Provider, model.Query, bool) {
	switch name {
	case config.ProviderUSAJobs:
		p := adapter.NewUSAJobsAdapter(adapter.USAJobsCredentials{
			Email:  cfg.USAJobs.Email,
			APIKey: cfg.USAJobs.APIKey,
		}, httpClient)
		return p, model.Query{
			Keyword:        cfg.USAJobs.Query,
			Location:       cfg.USAJobs.Location,
			Page:           1,
			ResultsPerPage: cfg.USAJobs.ResultsPerPage,
		}, true
	case config.ProviderAdzuna:
		p := adapter.NewAdzunaAdapter(adapter.AdzunaCredentials{
			AppID:  cfg.Adzuna.AppID,
			AppKey: cfg.Adzuna.AppKey,
		}, cfg.Adzuna.Country, httpClient)
		return p, model.Query{
			Keyword:        cfg.Adzuna.What,
			Location:       cfg.Adzuna.Where,
			Page:           1,
			ResultsPerPage: cfg.Adzuna.ResultsPerPage,
		}, true
	}
	return nil, model.Query{}, false
}

func newAssembler(cfg *config.Config) *enrich.Assembler {
	return enrich.NewAssembler(signal.NewScanner(cfg.Lexicons), cfg.Workers)
}

// setupLedger opens the configured seen-posting ledger and applies the
// retention window.
func setupLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (model.SeenStore, error) {
	switch cfg.Ledger.Backend {
	case "redis":
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
			TTL:      cfg.Ledger.Retention,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using redis ledger", zap.String("addr", cfg.Ledger.Redis.Addr))
		return s, nil
	case "none":
		return store.NewNopStore(), nil
	}

	s, err := store.NewSQLiteStore(cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Ledger.Retention > 0 {
		if err := s.Cleanup(ctx, cfg.Ledger.Retention); err != nil {
			s.Close()
			return nil, err
		}
	}
	logger.Debug("using sqlite ledger", zap.String("path", cfg.Ledger.Path))
	return s, nil
}

// setupSinks builds the object sink for the storage backend plus the
// optional ClickHouse and Postgres sinks, in write order.
func setupSinks(ctx context.Context, cfg *config.Config, c *closers, logger *zap.Logger) ([]model.BatchWriter, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}

	var sinks []model.BatchWriter
	switch cfg.Storage.Backend {
	case "local":
		sinks = append(sinks, writer.NewObjectSink("local", writer.NewDirStore(cfg.Storage.OutputDir)))
	default:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		c.add(client.Close)
		sinks = append(sinks, writer.NewObjectSink("gcs", writer.NewGCSStore(client, cfg.Storage.Bucket)))
	}

	if cfg.ClickHouse.DSN != "" {
		ch, err := writer.NewClickHouseSink(ctx, writer.ClickHouseOptions{
			DSN:      cfg.ClickHouse.DSN,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
			Database: cfg.ClickHouse.Database,
		}, logger)
		if err != nil {
			return nil, err
		}
		c.add(ch.Close)
		sinks = append(sinks, ch)
	}

	if cfg.Postgres.DSN != "" {
		pg, err := writer.NewPostgresSink(ctx, cfg.Postgres.DSN, cfg.Postgres.Schema, logger)
		if err != nil {
			return nil, err
		}
		c.add(pg.Close)
		sinks = append(sinks, pg)
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	logger.Info("sinks configured", zap.Strings("sinks", names))
	return sinks, nil
}

// setupNotifier always logs summaries; Slack and NATS join when configured.
func setupNotifier(cfg *config.Config, httpClient *http.Client, c *closers, logger *zap.Logger) (model.Notifier, error) {
	multi := notifier.Multi{notifier.NewLogNotifier(logger)}

	if cfg.Notification.SlackWebhookURL != "" {
		logger.Info("using slack notifier")
		multi = append(multi, notifier.NewSlackNotifier(cfg.Notification.SlackWebhookURL, httpClient, logger))
	}

	if cfg.NATS.URL != "" {
		n, err := notifier.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			return nil, err
		}
		c.add(n.Close)
		logger.Info("publishing batch events", zap.String("subject", cfg.NATS.Subject))
		multi = append(multi, n)
	}
	return multi, nil
}

// buildPipelines creates one pipeline per enabled provider, sharing the
// assembler, ledger, sinks and notifier.
func buildPipelines(cfg *config.Config, httpClient *http.Client, ledger model.SeenStore, sinks []model.BatchWriter, n model.Notifier, logger *zap.Logger) []runner.Pipeline {
	asm := newAssembler(cfg)

	var pipelines []runner.Pipeline
	for _, name := range cfg.Providers {
		provider, query, ok := createProvider(name, cfg, httpClient)
		if !ok {
			logger.Warn("unsupported provider, skipping", zap.String("provider", name))
			continue
		}
		pipelines = append(pipelines, pipeline.NewProviderPipeline(provider, query, asm, ledger, sinks, n, logger))
		logger.Debug("registered provider", zap.String("provider", name))
	}
	return pipelines
}
