package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobradar/internal/browser"
	"jobradar/internal/config"
	"jobradar/internal/crawl"
	"jobradar/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl all sites once",
	Long:  "Runs a single crawl pass over every registered site, delivers new postings, and exits.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sites", len(cfg.Sites),
		"dry_run", cfg.DryRun,
		"data_path", cfg.DataPath,
	)

	if err := checkDelivery(cfg); err != nil {
		logger.Error("startup check failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := crawlOnce(ctx, cfg, logger); err != nil {
		logger.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	return nil
}

// checkDelivery rejects a production run with no webhook before any
// site is crawled. Failing mid-run would burn the crawl and lose the
// postings.
func checkDelivery(cfg *config.Config) error {
	if !cfg.DryRun && cfg.WebhookURL == "" {
		return errors.New("webhook_url is required outside dry-run mode, set it in config or JOBRADAR_WEBHOOK_URL")
	}
	return nil
}

// crawlOnce runs one full crawl pass with its own browser session and
// archive handle. Wall-clock time is logged on every exit path.
func crawlOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()
	defer func() {
		logger.Info("crawl pass finished", "elapsed", time.Since(start).Round(time.Millisecond).String())
	}()

	session, err := browser.NewSession()
	if err != nil {
		return fmt.Errorf("starting browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing browser session", "error", err)
		}
	}()

	archive, err := store.OpenArchive(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("opening delivery archive: %w", err)
	}
	defer archive.Close()

	registry := store.NewRegistry(declaredSites(cfg), store.NewJSONCursorStore(cfg.DataPath))

	crawler := crawl.New(
		newAdapterFactory(session, logger),
		setupClassifier(cfg, logger),
		setupSummarizer(cfg, logger),
		setupNotifier(cfg, logger),
		registry,
		archive,
		cfg.DryRun,
		logger,
	)
	return crawler.Run(ctx)
}
