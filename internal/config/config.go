package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobradar crawler.
type Config struct {
	DataPath    string // JSON cursor store
	ArchivePath string // sqlite delivery archive
	WebhookURL  string // delivery webhook; required in production mode
	DryRun      bool   // simulation mode, from the DRY_RUN env var

	WatchSchedule string // cron spec for watch mode

	Classifier ClassifierConfig
	Summarizer SummarizerConfig
	Sites      []SiteConfig
}

// ClassifierConfig points at the zero-shot classification backend.
type ClassifierConfig struct {
	BaseURL        string
	APIKey         string
	Labels         []string // closed label set; last entry is the default
	PositiveLabels []string // relevance subset
	Timeout        time.Duration
}

// DefaultLabel is the label used for too-short inputs and backend failures.
func (c ClassifierConfig) DefaultLabel() string {
	if len(c.Labels) == 0 {
		return ""
	}
	return c.Labels[len(c.Labels)-1]
}

// SummarizerConfig points at the generative summarization backend.
type SummarizerConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Cooldown time.Duration // mandatory post-call delay (requests-per-minute ceiling)
	Timeout  time.Duration
}

// SiteConfig describes a single registered listing site.
type SiteConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Adapter  string `yaml:"adapter"`
	EntryTag string `yaml:"entry_tag"`
}

// rawConfig is used for YAML unmarshaling (snake_case, durations as strings).
type rawConfig struct {
	DataPath      string              `yaml:"data_path"`
	ArchivePath   string              `yaml:"archive_path"`
	WebhookURL    string              `yaml:"webhook_url"`
	WatchSchedule string              `yaml:"watch_schedule"`
	Classifier    rawClassifierConfig `yaml:"classifier"`
	Summarizer    rawSummarizerConfig `yaml:"summarizer"`
	Sites         []SiteConfig        `yaml:"sites"`
}

type rawClassifierConfig struct {
	BaseURL        string   `yaml:"base_url"`
	APIKey         string   `yaml:"api_key"`
	Labels         []string `yaml:"labels"`
	PositiveLabels []string `yaml:"positive_labels"`
	Timeout        string   `yaml:"timeout"`
}

type rawSummarizerConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Cooldown string `yaml:"cooldown"`
	Timeout  string `yaml:"timeout"`
}

// Load reads .env (if present), then the YAML config at path with env vars
// expanded, applies defaults, and validates. The DRY_RUN and
// JOBRADAR_WEBHOOK_URL env vars override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		DataPath:      raw.DataPath,
		ArchivePath:   raw.ArchivePath,
		WebhookURL:    raw.WebhookURL,
		WatchSchedule: raw.WatchSchedule,
		Sites:         raw.Sites,
		DryRun:        Truthy(os.Getenv("DRY_RUN")),
	}

	if env := os.Getenv("JOBRADAR_WEBHOOK_URL"); env != "" {
		cfg.WebhookURL = env
	}

	if cfg.DataPath == "" {
		cfg.DataPath = "data/homepage.json"
	}
	if cfg.ArchivePath == "" {
		cfg.ArchivePath = "jobradar.db"
	}
	if cfg.WatchSchedule == "" {
		cfg.WatchSchedule = "0 9 * * *"
	}

	cfg.Classifier, err = parseClassifier(raw.Classifier)
	if err != nil {
		return nil, err
	}
	cfg.Summarizer, err = parseSummarizer(raw.Summarizer)
	if err != nil {
		return nil, err
	}

	for i, site := range cfg.Sites {
		if site.URL == "" {
			return nil, fmt.Errorf("sites[%d] (%s): url is required", i, site.Name)
		}
		if site.Adapter == "" {
			cfg.Sites[i].Adapter = "inthiswork"
		}
	}

	return cfg, nil
}

func parseClassifier(raw rawClassifierConfig) (ClassifierConfig, error) {
	cfg := ClassifierConfig{
		BaseURL:        raw.BaseURL,
		APIKey:         raw.APIKey,
		Labels:         raw.Labels,
		PositiveLabels: raw.PositiveLabels,
		Timeout:        30 * time.Second,
	}
	if len(cfg.Labels) == 0 {
		cfg.Labels = []string{"AI/인공지능", "데이터/분석", "연구", "웹/앱 개발", "기타"}
		cfg.PositiveLabels = []string{"AI/인공지능", "데이터/분석", "연구"}
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse classifier.timeout %q: %w", raw.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func parseSummarizer(raw rawSummarizerConfig) (SummarizerConfig, error) {
	cfg := SummarizerConfig{
		BaseURL:  raw.BaseURL,
		APIKey:   raw.APIKey,
		Model:    raw.Model,
		Cooldown: 30 * time.Second,
		Timeout:  60 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if raw.Cooldown != "" {
		d, err := time.ParseDuration(raw.Cooldown)
		if err != nil {
			return cfg, fmt.Errorf("parse summarizer.cooldown %q: %w", raw.Cooldown, err)
		}
		cfg.Cooldown = d
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse summarizer.timeout %q: %w", raw.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Truthy reports whether an env-style flag value means "on".
// Accepts 1/true/yes/on, case-insensitive; everything else is off.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
