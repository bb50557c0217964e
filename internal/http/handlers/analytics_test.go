package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

type fakeAnalyticsRepo struct {
	rows     []domain.AnalyticsDaily
	gotLimit int
}

func (f *fakeAnalyticsRepo) IncrementRequest(context.Context, string, domain.RequestMetric) error {
	return nil
}

func (f *fakeAnalyticsRepo) GetSummary(_ context.Context, limit int) ([]domain.AnalyticsDaily, error) {
	f.gotLimit = limit
	return f.rows, nil
}

func TestAnalyticsSummary(t *testing.T) {
	repo := &fakeAnalyticsRepo{rows: []domain.AnalyticsDaily{{
		Day:       time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Endpoint:  "POST /api/ai/cartoon",
		Country:   "ID",
		Requests:  5,
		Successes: 4,
		Failures:  1,
	}}}
	app := &App{Config: &infra.Config{}, Analytics: repo}

	rr := httptest.NewRecorder()
	app.AnalyticsSummary(rr, httptest.NewRequest("GET", "/api/analytics/summary?days=7", nil))

	if rr.Code != 200 {
		t.Fatalf("status = %d", rr.Code)
	}
	if repo.gotLimit != 7 {
		t.Fatalf("limit = %d", repo.gotLimit)
	}
	body := decodeBody(t, rr)
	items := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	row := items[0].(map[string]any)
	if row["day"] != "2026-08-29" || row["country"] != "ID" || int(row["requests"].(float64)) != 5 {
		t.Fatalf("row = %v", row)
	}
}

func TestAnalyticsSummaryNoRepo(t *testing.T) {
	app := &App{Config: &infra.Config{}}

	rr := httptest.NewRecorder()
	app.AnalyticsSummary(rr, httptest.NewRequest("GET", "/api/analytics/summary", nil))

	if rr.Code != 200 {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if items := body["items"].([]any); len(items) != 0 {
		t.Fatalf("items = %v", items)
	}
}
