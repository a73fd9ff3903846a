package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("DRY_RUN", "")
	t.Setenv("JOBRADAR_WEBHOOK_URL", "")
	path := writeConfig(t, `
data_path: testdata/homepage.json
webhook_url: https://discord.test/webhook
classifier:
  base_url: https://classify.test
  labels: ["AI", "Data", "Other"]
  positive_labels: ["AI", "Data"]
summarizer:
  api_key: test-key
  cooldown: 5s
sites:
  - name: inthiswork
    url: https://inthiswork.test/jobs
    entry_tag: 신입
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WebhookURL != "https://discord.test/webhook" {
		t.Errorf("webhook = %q", cfg.WebhookURL)
	}
	if cfg.Classifier.DefaultLabel() != "Other" {
		t.Errorf("default label = %q, want last label", cfg.Classifier.DefaultLabel())
	}
	if got := cfg.Summarizer.Cooldown.Seconds(); got != 5 {
		t.Errorf("cooldown = %vs, want 5s", got)
	}
	if len(cfg.Sites) != 1 || cfg.Sites[0].Adapter != "inthiswork" {
		t.Errorf("sites = %+v, want one site with default adapter", cfg.Sites)
	}
	if cfg.DryRun {
		t.Error("dry run should default to off")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DRY_RUN", "TRUE")
	t.Setenv("JOBRADAR_WEBHOOK_URL", "https://override.test/hook")
	path := writeConfig(t, `
webhook_url: https://file.test/hook
sites:
  - name: a
    url: https://a.test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.DryRun {
		t.Error("DRY_RUN=TRUE should enable dry run")
	}
	if cfg.WebhookURL != "https://override.test/hook" {
		t.Errorf("webhook = %q, want env override", cfg.WebhookURL)
	}
}

func TestLoad_SiteMissingURL(t *testing.T) {
	t.Setenv("DRY_RUN", "")
	path := writeConfig(t, `
sites:
  - name: broken
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for site without url")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
