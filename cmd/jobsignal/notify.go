package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsignal/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample run summary through every configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	defer logger.Sync()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fail(logger, "failed to load config", err)
	}

	var c closers
	defer c.closeAll(logger)

	n, err := setupNotifier(cfg, newHTTPClient(cfg), &c, logger)
	if err != nil {
		return fail(logger, "failed to set up notifier", err)
	}

	if err := notifier.SendTestMessage(context.Background(), n); err != nil {
		return fail(logger, "test notification failed", err)
	}
	logger.Info("test notification sent successfully")
	return nil
}
