package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobradar/internal/adapter"
	"jobradar/internal/browser"
	"jobradar/internal/classify"
	"jobradar/internal/config"
	"jobradar/internal/crawl"
	"jobradar/internal/enrich"
	"jobradar/internal/model"
	"jobradar/internal/notify"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job posting radar — crawl, classify, deliver",
	Long:  "JobRadar crawls job listing sites for new postings, filters and summarizes them, and delivers digests to a Discord webhook.",
	// Default to `run` so that `jobradar` with no args does one crawl pass.
	// This keeps cron entries that invoke the binary directly working.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupNotifier picks the delivery channel. Simulation runs never touch
// the real webhook.
func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	if cfg.DryRun {
		logger.Info("dry-run mode, postings will be logged instead of delivered")
		return notify.NewLog(logger)
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	logger.Info("using discord webhook notifier")
	return notify.NewDiscord(cfg.WebhookURL, httpClient, time.Second, logger)
}

func setupClassifier(cfg *config.Config, logger *slog.Logger) *classify.ZeroShot {
	httpClient := &http.Client{Timeout: cfg.Classifier.Timeout}
	return classify.NewZeroShot(
		cfg.Classifier.BaseURL,
		cfg.Classifier.APIKey,
		cfg.Classifier.Labels,
		cfg.Classifier.PositiveLabels,
		cfg.Classifier.DefaultLabel(),
		httpClient,
		logger,
	)
}

func setupSummarizer(cfg *config.Config, logger *slog.Logger) *enrich.Gemini {
	httpClient := &http.Client{Timeout: cfg.Summarizer.Timeout}
	return enrich.NewGemini(
		cfg.Summarizer.BaseURL,
		cfg.Summarizer.APIKey,
		cfg.Summarizer.Model,
		cfg.Summarizer.Cooldown,
		httpClient,
		logger,
	)
}

// declaredSites maps the config site list onto the crawl model. Cursors
// are filled in later by the registry.
func declaredSites(cfg *config.Config) []model.Site {
	sites := make([]model.Site, 0, len(cfg.Sites))
	for _, s := range cfg.Sites {
		sites = append(sites, model.Site{
			Name:          s.Name,
			URL:           s.URL,
			Adapter:       s.Adapter,
			EntryTag:      s.EntryTag,
			LastSeenIndex: model.NoCursor,
		})
	}
	return sites
}

// newAdapterFactory binds site declarations to scraping adapters over a
// shared browser session.
func newAdapterFactory(session *browser.Session, logger *slog.Logger) crawl.AdapterFactory {
	return func(site model.Site) (model.SiteAdapter, error) {
		switch site.Adapter {
		case "", "inthiswork":
			return adapter.NewInThisWork(session.Page(), site.EntryTag, logger), nil
		default:
			return nil, fmt.Errorf("unsupported adapter %q for site %s", site.Adapter, site.Name)
		}
	}
}
