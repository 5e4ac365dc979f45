package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsignal/internal/audit"
	"github.com/amishk599/jobsignal/internal/config"
	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/runner"
)

var (
	auditDir  string
	auditLive string
)

var auditCmd = &cobra.Command{
	Use:   "audit [batch.json...]",
	Short: "Browse enriched postings interactively (TUI)",
	Long: "Opens enriched batch files in a split-pane view: all postings on the left, postings\n" +
		"with a medium or high signal on the right. Without arguments, batches under the local\n" +
		"output directory are offered in a picker. --live fetches a fresh page instead.",
	RunE: runAuditCmd,
}

func init() {
	auditCmd.Flags().StringVar(&auditDir, "dir", "", "directory to search for batch files (default: storage.output_dir)")
	auditCmd.Flags().StringVar(&auditLive, "live", "", "fetch and enrich one page from this provider instead of reading files")
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	if auditLive != "" {
		return auditLiveProvider(cfg, auditLive)
	}

	files := args
	dir := ""
	if len(files) == 0 {
		dir = auditDir
		if dir == "" {
			dir = cfg.Storage.OutputDir
		}
		files, err = audit.FindBatches(dir)
		if err != nil {
			return fail(logger, "failed to list batches", err)
		}
	}
	if len(files) == 0 {
		fmt.Printf("No batch files found in %s.\n", dir)
		return nil
	}

	for {
		choice := 0
		if len(files) > 1 {
			choice, err = audit.RunPicker("Audit: select a batch", files)
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			if choice < 0 {
				return nil
			}
		}

		batch, err := audit.LoadBatch(filepath.Join(dir, files[choice]))
		if err != nil {
			fmt.Printf("Error loading batch: %v\n", err)
			if len(files) == 1 {
				return err
			}
			continue
		}

		wantQuit, err := audit.RunAuditTUI(batch)
		if err != nil {
			return fmt.Errorf("audit view: %w", err)
		}
		if wantQuit || len(files) == 1 {
			return nil
		}
		// else: back to the picker
	}
}

// auditLiveProvider fetches and enriches one page without recording or
// writing anything. Logs are discarded so they don't corrupt the TUI.
func auditLiveProvider(cfg *config.Config, name string) error {
	provider, query, ok := createProvider(name, cfg, newHTTPClient(cfg))
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	asm := newAssembler(cfg)

	batch, err := audit.RunLoader(name, func(ctx context.Context) (model.Batch, error) {
		items, err := provider.Fetch(ctx, query)
		if err != nil {
			return model.Batch{}, err
		}
		ingestTS := runner.IngestTS(time.Now())
		records, err := asm.AssembleAll(ctx, items, provider, ingestTS)
		if err != nil {
			return model.Batch{}, err
		}
		return model.Batch{IngestTS: ingestTS, Source: name, Results: records}, nil
	})
	if err != nil {
		fmt.Printf("Error fetching postings: %v\n", err)
		return err
	}

	_, err = audit.RunAuditTUI(batch)
	return err
}
