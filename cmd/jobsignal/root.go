package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amishk599/jobsignal/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsignal",
	Short: "Job posting ingestion with AI and offshoring keyword signals",
	Long: "jobsignal fetches postings from USAJOBS and Adzuna, enriches them with keyword\n" +
		"signals and writes one batch per provider per run.",
	// Default to `run` so the bare binary performs one ingestion, which is
	// how cron and scheduled jobs invoke it.
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to optional config file (default: JOBSIGNAL_CONFIG env var)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSIGNAL_CONFIG env var > no file.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("JOBSIGNAL_CONFIG")
	}
	return config.Load(path)
}

// setupLogger writes human-readable logs to stderr; stdout is kept for
// command output.
func setupLogger(dbg bool) *zap.Logger {
	logger, err := loggerConfig(dbg).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// loggerConfig keeps stack traces out of error lines unless --debug is set.
func loggerConfig(dbg bool) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Sampling = nil
	cfg.DisableStacktrace = !dbg
	if dbg {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	}
	return cfg
}

type stackTracer interface {
	StackTrace() []byte
}

// fail logs err and returns it so cobra exits non-zero. Under --debug the
// stack captured by typed errors is logged too.
func fail(logger *zap.Logger, msg string, err error) error {
	fields := []zap.Field{zap.Error(err)}
	var st stackTracer
	if debug && errors.As(err, &st) {
		fields = append(fields, zap.ByteString("stack", st.StackTrace()))
	}
	logger.Error(msg, fields...)
	return &loggedError{err: err}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}
