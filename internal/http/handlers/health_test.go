package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"server/internal/infra"
)

func TestHealth(t *testing.T) {
	app := &App{Config: &infra.Config{}}

	rr := httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest("GET", "/api/health", nil))

	if rr.Code != 200 {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["ok"] != true {
		t.Fatalf("ok = %v", body["ok"])
	}
	if _, err := time.Parse(time.RFC3339, body["time"].(string)); err != nil {
		t.Fatalf("time not RFC3339: %v", err)
	}
}

func TestVersion(t *testing.T) {
	app := &App{Config: &infra.Config{
		BuildID:   "abc1234",
		CommitSHA: "abc1234def",
		DeployEnv: "production",
	}}

	rr := httptest.NewRecorder()
	app.Version(rr, httptest.NewRequest("GET", "/api/version", nil))

	body := decodeBody(t, rr)
	if body["buildId"] != "abc1234" || body["commit"] != "abc1234def" || body["env"] != "production" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestVersionFallbacks(t *testing.T) {
	app := &App{Config: &infra.Config{BuildID: "dev", AppEnv: "development"}}

	rr := httptest.NewRecorder()
	app.Version(rr, httptest.NewRequest("GET", "/api/version", nil))

	body := decodeBody(t, rr)
	if body["commit"] != "unknown" {
		t.Fatalf("commit = %v", body["commit"])
	}
	if body["env"] != "development" {
		t.Fatalf("env = %v", body["env"])
	}
}

func TestAIStyles(t *testing.T) {
	app := &App{Config: &infra.Config{}}

	rr := httptest.NewRecorder()
	app.AIStyles(rr, httptest.NewRequest("GET", "/api/ai/styles", nil))

	body := decodeBody(t, rr)
	if body["default"] != "toon_ink" {
		t.Fatalf("default = %v", body["default"])
	}
	items, _ := body["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	seen := map[string]bool{}
	for _, it := range items {
		entry := it.(map[string]any)
		seen[entry["id"].(string)] = true
		if entry["label"] == "" || entry["model"] == "" {
			t.Fatalf("incomplete entry: %v", entry)
		}
	}
	for _, id := range []string{"toon_ink", "toon_mochi", "toon_anime"} {
		if !seen[id] {
			t.Fatalf("missing style %s", id)
		}
	}
}
