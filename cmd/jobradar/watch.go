package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run crawl passes on a schedule",
	Long:  "Starts a scheduler that runs a crawl pass on the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := checkDelivery(cfg); err != nil {
		logger.Error("startup check failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := cron.New()
	_, err = sched.AddFunc(cfg.WatchSchedule, func() {
		if err := crawlOnce(ctx, cfg, logger); err != nil {
			logger.Error("scheduled crawl failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("invalid watch schedule", "schedule", cfg.WatchSchedule, "error", err)
		os.Exit(1)
	}

	logger.Info("watch mode started", "schedule", cfg.WatchSchedule)
	sched.Start()

	<-ctx.Done()
	logger.Info("shutting down, waiting for running crawl")

	// Stop returns a context that is done once in-flight jobs finish.
	<-sched.Stop().Done()
	logger.Info("goodbye")
	return nil
}
