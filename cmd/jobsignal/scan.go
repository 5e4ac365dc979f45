package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsignal/internal/signal"
	"github.com/amishk599/jobsignal/internal/textclean"
)

var scanCmd = &cobra.Command{
	Use:   "scan [text...]",
	Short: "Scan text for keyword signals",
	Long:  "Cleans the given text (or stdin when no args are given) and prints the keyword signal report as JSON.",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fail(logger, "failed to read stdin", err)
		}
		text = string(data)
	}

	report := signal.NewScanner(cfg.Lexicons).Scan(textclean.CleanText(text))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
