package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobradar/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test message to the webhook",
	Long:  "Sends a synthetic posting through the configured Discord webhook to verify connectivity.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.WebhookURL == "" {
		logger.Error("webhook test failed", "error", errors.New("webhook_url is not configured"))
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := notify.NewDiscord(cfg.WebhookURL, httpClient, time.Second, logger)

	if err := notify.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
