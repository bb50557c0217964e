package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("REPLICATE_POLL_TIMEOUT_SECONDS", "")
	t.Setenv("VERCEL_GIT_COMMIT_SHA", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3002" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.ReplicateBaseURL != "https://api.replicate.com" {
		t.Fatalf("ReplicateBaseURL = %q", cfg.ReplicateBaseURL)
	}
	if cfg.ReplicatePollBudget != 120*time.Second {
		t.Fatalf("ReplicatePollBudget = %v", cfg.ReplicatePollBudget)
	}
	if cfg.MaxImageDimension != 2048 {
		t.Fatalf("MaxImageDimension = %d", cfg.MaxImageDimension)
	}
	if cfg.BuildID != "api-dev" {
		t.Fatalf("BuildID = %q", cfg.BuildID)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadConfigAllowsMissingProviderToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REPLICATE_API_TOKEN", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ReplicateAPIToken != "" {
		t.Fatalf("ReplicateAPIToken = %q", cfg.ReplicateAPIToken)
	}
}

func TestLoadConfigBuildIDFromCommitSHA(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("BUILD_ID", "")
	t.Setenv("VERCEL_GIT_COMMIT_SHA", "0123456789abcdef0123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BuildID != "api-0123456789ab" {
		t.Fatalf("BuildID = %q", cfg.BuildID)
	}
	if cfg.CommitSHA != "0123456789abcdef0123" {
		t.Fatalf("CommitSHA = %q", cfg.CommitSHA)
	}
}

func TestLoadConfigPollBudgetOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REPLICATE_POLL_TIMEOUT_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ReplicatePollBudget != 30*time.Second {
		t.Fatalf("ReplicatePollBudget = %v", cfg.ReplicatePollBudget)
	}
}
