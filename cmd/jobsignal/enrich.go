package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amishk599/jobsignal/internal/adapter"
	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/runner"
	"github.com/amishk599/jobsignal/internal/writer"
)

var (
	enrichProvider string
	enrichInput    string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a saved provider response offline",
	Long:  "Reads a raw search response captured from a provider and prints the enriched batch JSON to stdout.",
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichProvider, "provider", "", "provider that produced the response (usajobs, adzuna)")
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "path to the saved response JSON (- for stdin)")
	_ = enrichCmd.MarkFlagRequired("provider")
	_ = enrichCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	// Normalize and ExtractDescription never touch the network.
	provider, _, ok := createProvider(enrichProvider, cfg, http.DefaultClient)
	if !ok {
		return fail(logger, "unknown provider", fmt.Errorf("unknown provider %q", enrichProvider))
	}

	var body []byte
	if enrichInput == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(enrichInput)
	}
	if err != nil {
		return fail(logger, "failed to read input", err)
	}

	items, err := adapter.DecodeResponse(provider.Name(), body)
	if err != nil {
		return fail(logger, "failed to decode response", err)
	}

	ingestTS := runner.IngestTS(time.Now())
	records, err := newAssembler(cfg).AssembleAll(context.Background(), items, provider, ingestTS)
	if err != nil {
		return fail(logger, "failed to enrich", err)
	}

	out, err := writer.EncodeBatch(model.Batch{IngestTS: ingestTS, Source: provider.Name(), Results: records})
	if err != nil {
		return fail(logger, "failed to encode batch", err)
	}
	if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
		return err
	}
	logger.Debug("enriched offline", zap.String("source", provider.Name()), zap.Int("records", len(records)))
	return nil
}
