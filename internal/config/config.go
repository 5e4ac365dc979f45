package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/signal"
)

// Config is the root configuration for a jobsignal run.
type Config struct {
	Providers      []string // enabled providers, in run order
	USAJobs        USAJobsConfig
	Adzuna         AdzunaConfig
	Storage        StorageConfig
	Workers        int
	PartialFailure string // "fail" or "tolerate"
	Ledger         LedgerConfig
	NATS           NATSConfig
	ClickHouse     ClickHouseConfig
	Postgres       PostgresConfig
	Notification   NotificationConfig
	Telemetry      TelemetryConfig
	HTTPTimeout    time.Duration
	Lexicons       signal.Lexicons
}

// USAJobsConfig holds USAJOBS credentials and search defaults.
type USAJobsConfig struct {
	Email          string `yaml:"user_agent_email"`
	APIKey         string `yaml:"api_key"`
	Query          string `yaml:"query"`
	Location       string `yaml:"location"`
	ResultsPerPage int    `yaml:"results_per_page"`
}

// AdzunaConfig holds Adzuna credentials and search defaults.
type AdzunaConfig struct {
	AppID          string `yaml:"app_id"`
	AppKey         string `yaml:"app_key"`
	Country        string `yaml:"country"`
	What           string `yaml:"what"`
	Where          string `yaml:"where"`
	ResultsPerPage int    `yaml:"results_per_page"`
}

// StorageConfig selects where batch artifacts are written.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "gcs" or "local"
	Bucket    string `yaml:"bucket"`
	OutputDir string `yaml:"output_dir"`
}

// LedgerConfig selects the seen-posting ledger.
type LedgerConfig struct {
	Backend   string        // "sqlite", "redis" or "none"
	Path      string        // sqlite file
	Retention time.Duration // 0 keeps entries forever
	Redis     RedisConfig
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type ClickHouseConfig struct {
	DSN      string `yaml:"dsn"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

// NotificationConfig controls the optional Slack summary.
type NotificationConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

const (
	ProviderUSAJobs = "usajobs"
	ProviderAdzuna  = "adzuna"

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// KnownProviders lists every provider in default run order.
var KnownProviders = []string{ProviderUSAJobs, ProviderAdzuna}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Providers      []string           `yaml:"providers"`
	USAJobs        USAJobsConfig      `yaml:"usajobs"`
	Adzuna         AdzunaConfig       `yaml:"adzuna"`
	Storage        StorageConfig      `yaml:"storage"`
	Workers        int                `yaml:"workers"`
	PartialFailure string             `yaml:"partial_failure"`
	Ledger         rawLedgerConfig    `yaml:"ledger"`
	NATS           NATSConfig         `yaml:"nats"`
	ClickHouse     ClickHouseConfig   `yaml:"clickhouse"`
	Postgres       PostgresConfig     `yaml:"postgres"`
	Notification   NotificationConfig `yaml:"notification"`
	Telemetry      TelemetryConfig    `yaml:"telemetry"`
	HTTPTimeout    string             `yaml:"http_timeout"`
	Lexicons       signal.Lexicons    `yaml:"lexicons"`
}

type rawLedgerConfig struct {
	Backend   string      `yaml:"backend"`
	Path      string      `yaml:"path"`
	Retention string      `yaml:"retention"`
	Redis     RedisConfig `yaml:"redis"`
}

func defaults() rawConfig {
	return rawConfig{
		Providers: append([]string(nil), KnownProviders...),
		USAJobs: USAJobsConfig{
			Query:          "software engineer",
			Location:       "United States",
			ResultsPerPage: 100,
		},
		Adzuna: AdzunaConfig{
			Country:        "us",
			What:           "software engineer",
			Where:          "United States",
			ResultsPerPage: 50,
		},
		Storage:        StorageConfig{Backend: "gcs", OutputDir: "data"},
		Workers:        8,
		PartialFailure: "fail",
		Ledger: rawLedgerConfig{
			Backend: "sqlite",
			Path:    "jobsignal.db",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		NATS:        NATSConfig{Subject: "jobs.enriched"},
		Postgres:    PostgresConfig{Schema: "public"},
		HTTPTimeout: "30s",
	}
}

// Load resolves configuration from built-in defaults, then the optional
// YAML file at path (environment variables expanded), then environment
// variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.Expand(string(data), func(k string) string {
			v, _ := lookup(k)
			return v
		})
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&raw, lookup); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(raw.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse http_timeout %q: %w", raw.HTTPTimeout, err)
	}

	var retention time.Duration
	if raw.Ledger.Retention != "" {
		retention, err = time.ParseDuration(raw.Ledger.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse ledger.retention %q: %w", raw.Ledger.Retention, err)
		}
	}

	lex := signal.DefaultLexicons()
	if len(raw.Lexicons.AI) > 0 {
		lex.AI = raw.Lexicons.AI
	}
	if len(raw.Lexicons.Offshoring) > 0 {
		lex.Offshoring = raw.Lexicons.Offshoring
	}

	cfg := &Config{
		Providers:      normalizeList(raw.Providers),
		USAJobs:        raw.USAJobs,
		Adzuna:         raw.Adzuna,
		Storage:        raw.Storage,
		Workers:        raw.Workers,
		PartialFailure: strings.ToLower(strings.TrimSpace(raw.PartialFailure)),
		Ledger: LedgerConfig{
			Backend:   strings.ToLower(raw.Ledger.Backend),
			Path:      raw.Ledger.Path,
			Retention: retention,
			Redis:     raw.Ledger.Redis,
		},
		NATS:         raw.NATS,
		ClickHouse:   raw.ClickHouse,
		Postgres:     raw.Postgres,
		Notification: raw.Notification,
		Telemetry:    raw.Telemetry,
		HTTPTimeout:  timeout,
		Lexicons:     lex,
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto raw. Unset variables leave
// the current value alone.
func applyEnv(raw *rawConfig, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", name, v, err)
		}
		*dst = n
		return nil
	}

	if v, ok := lookup("JOBSIGNAL_PROVIDERS"); ok && v != "" {
		raw.Providers = strings.Split(v, ",")
	}

	str("USAJOBS_USER_AGENT_EMAIL", &raw.USAJobs.Email)
	str("USAJOBS_API_KEY", &raw.USAJobs.APIKey)
	str("USAJOBS_QUERY", &raw.USAJobs.Query)
	str("USAJOBS_LOCATION", &raw.USAJobs.Location)

	str("ADZUNA_APP_ID", &raw.Adzuna.AppID)
	str("ADZUNA_APP_KEY", &raw.Adzuna.AppKey)
	str("ADZUNA_COUNTRY", &raw.Adzuna.Country)
	str("ADZUNA_WHAT", &raw.Adzuna.What)
	str("ADZUNA_WHERE", &raw.Adzuna.Where)

	str("INGESTION_BUCKET", &raw.Storage.Bucket)
	str("JOBSIGNAL_STORAGE", &raw.Storage.Backend)
	str("JOBSIGNAL_OUTPUT_DIR", &raw.Storage.OutputDir)
	str("JOBSIGNAL_PARTIAL_FAILURE", &raw.PartialFailure)

	str("JOBSIGNAL_LEDGER", &raw.Ledger.Backend)
	str("JOBSIGNAL_LEDGER_PATH", &raw.Ledger.Path)
	str("JOBSIGNAL_LEDGER_RETENTION", &raw.Ledger.Retention)
	str("REDIS_ADDR", &raw.Ledger.Redis.Addr)
	str("REDIS_PASSWORD", &raw.Ledger.Redis.Password)

	str("NATS_URL", &raw.NATS.URL)
	str("NATS_SUBJECT", &raw.NATS.Subject)

	str("CLICKHOUSE_DSN", &raw.ClickHouse.DSN)
	str("CLICKHOUSE_USERNAME", &raw.ClickHouse.Username)
	str("CLICKHOUSE_PASSWORD", &raw.ClickHouse.Password)
	str("CLICKHOUSE_DATABASE", &raw.ClickHouse.Database)

	str("PG_DSN", &raw.Postgres.DSN)
	str("PG_SCHEMA", &raw.Postgres.Schema)

	str("SLACK_WEBHOOK_URL", &raw.Notification.SlackWebhookURL)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &raw.Telemetry.OTLPEndpoint)
	str("HTTP_TIMEOUT", &raw.HTTPTimeout)

	for name, dst := range map[string]*int{
		"USAJOBS_RESULTS_PER_PAGE": &raw.USAJobs.ResultsPerPage,
		"ADZUNA_RESULTS_PER_PAGE":  &raw.Adzuna.ResultsPerPage,
		"JOBSIGNAL_WORKERS":        &raw.Workers,
		"REDIS_DB":                 &raw.Ledger.Redis.DB,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func normalizeList(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func validate(cfg *Config) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}
	for _, p := range cfg.Providers {
		if !isKnownProvider(p) {
			return fmt.Errorf("unknown provider %q (known: %s)", p, strings.Join(KnownProviders, ", "))
		}
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.USAJobs.ResultsPerPage < 1 || cfg.Adzuna.ResultsPerPage < 1 {
		return fmt.Errorf("results_per_page must be at least 1")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.Ledger.Retention < 0 {
		return fmt.Errorf("ledger.retention must not be negative, got %v", cfg.Ledger.Retention)
	}

	switch cfg.PartialFailure {
	case "fail", "tolerate":
	default:
		return fmt.Errorf("partial_failure must be \"fail\" or \"tolerate\", got %q", cfg.PartialFailure)
	}

	switch cfg.Storage.Backend {
	case "gcs", "local":
	default:
		return fmt.Errorf("storage.backend must be \"gcs\" or \"local\", got %q", cfg.Storage.Backend)
	}

	switch cfg.Ledger.Backend {
	case "sqlite", "redis", "none":
	default:
		return fmt.Errorf("ledger.backend must be \"sqlite\", \"redis\" or \"none\", got %q", cfg.Ledger.Backend)
	}

	if url := cfg.Notification.SlackWebhookURL; url != "" && !strings.HasPrefix(url, slackWebhookPrefix) {
		return fmt.Errorf("notification.slack_webhook_url must start with %s", slackWebhookPrefix)
	}

	return nil
}

// ValidateStorage checks what writing batches needs. It is separate from
// Load so read-only commands work without a bucket.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Backend {
	case "gcs":
		if c.Storage.Bucket == "" {
			return model.NewConfigError("INGESTION_BUCKET")
		}
	case "local":
		if c.Storage.OutputDir == "" {
			return model.NewConfigError("JOBSIGNAL_OUTPUT_DIR")
		}
	}
	return nil
}

func isKnownProvider(name string) bool {
	for _, p := range KnownProviders {
		if p == name {
			return true
		}
	}
	return false
}
