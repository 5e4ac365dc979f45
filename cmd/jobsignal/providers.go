package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsignal/internal/config"
	"github.com/amishk599/jobsignal/internal/store"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers and their credential status",
	Long:  "Reads the config and prints a table of every known provider, whether it is enabled and whether its credentials are set.",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	enabled := make(map[string]bool)
	for _, p := range cfg.Providers {
		enabled[p] = true
	}

	seen := ledgerCounts(cfg)

	fmt.Printf("%-12s %-10s %-13s %-8s %s\n", "Provider", "Status", "Credentials", "Seen", "Search")
	fmt.Println(strings.Repeat("─", 72))

	for _, name := range config.KnownProviders {
		status := "disabled"
		if enabled[name] {
			status = "enabled"
		}
		creds, search := providerDetails(cfg, name)
		count := "-"
		if n, ok := seen[name]; ok {
			count = strconv.Itoa(n)
		}
		fmt.Printf("%-12s %-10s %-13s %-8s %s\n", name, status, creds, count, search)
	}

	fmt.Printf("\nTotal: %d providers (%d enabled)\n", len(config.KnownProviders), len(cfg.Providers))
	return nil
}

// ledgerCounts reads per-provider totals from an existing sqlite ledger.
// Other backends, or a ledger that was never created, report nothing.
func ledgerCounts(cfg *config.Config) map[string]int {
	counts := make(map[string]int)
	if cfg.Ledger.Backend != "sqlite" {
		return counts
	}
	if _, err := os.Stat(cfg.Ledger.Path); err != nil {
		return counts
	}
	s, err := store.NewSQLiteStore(cfg.Ledger.Path)
	if err != nil {
		return counts
	}
	defer s.Close()
	for _, name := range config.KnownProviders {
		if n, err := s.Count(context.Background(), name); err == nil {
			counts[name] = n
		}
	}
	return counts
}

func providerDetails(cfg *config.Config, name string) (creds, search string) {
	switch name {
	case config.ProviderUSAJobs:
		return credentialStatus(cfg.USAJobs.Email, cfg.USAJobs.APIKey),
			fmt.Sprintf("%q in %s", cfg.USAJobs.Query, cfg.USAJobs.Location)
	case config.ProviderAdzuna:
		return credentialStatus(cfg.Adzuna.AppID, cfg.Adzuna.AppKey),
			fmt.Sprintf("%q in %s (%s)", cfg.Adzuna.What, cfg.Adzuna.Where, strings.ToUpper(cfg.Adzuna.Country))
	}
	return "", ""
}

func credentialStatus(values ...string) string {
	set := 0
	for _, v := range values {
		if v != "" {
			set++
		}
	}
	switch set {
	case len(values):
		return "set"
	case 0:
		return "missing"
	default:
		return "partial"
	}
}
