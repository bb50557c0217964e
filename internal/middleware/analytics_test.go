package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"server/internal/domain"
)

type recorderSpy struct {
	mu      sync.Mutex
	metrics []domain.RequestMetric
	done    chan struct{}
}

func (s *recorderSpy) IncrementRequest(_ context.Context, _ string, metric domain.RequestMetric) error {
	s.mu.Lock()
	s.metrics = append(s.metrics, metric)
	s.mu.Unlock()
	close(s.done)
	return nil
}

func TestAnalyticsRecordsCompletedRequest(t *testing.T) {
	spy := &recorderSpy{done: make(chan struct{})}
	handler := Analytics(spy, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/ai/cartoon", nil)
	req.Header.Set("X-Country-Code", "tw")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case <-spy.done:
	case <-time.After(time.Second):
		t.Fatalf("metric was never recorded")
	}

	spy.mu.Lock()
	defer spy.mu.Unlock()
	metric := spy.metrics[0]
	if metric.Endpoint != "POST /api/ai/cartoon" {
		t.Fatalf("endpoint = %q", metric.Endpoint)
	}
	if metric.Country != "TW" {
		t.Fatalf("country = %q", metric.Country)
	}
	if metric.Success {
		t.Fatalf("422 should count as failure")
	}
}

func TestAnalyticsNilRecorderPassesThrough(t *testing.T) {
	handler := Analytics(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestResolveCountryPrefersHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "jp")

	lookup := func(ip string) (string, error) { return "US", nil }
	if got := ResolveCountry(req, lookup); got != "JP" {
		t.Fatalf("country = %q, want JP", got)
	}
}

func TestResolveCountryFallsBackToLookup(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"

	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.9" {
			t.Fatalf("lookup ip = %q", ip)
		}
		return "de", nil
	}
	if got := ResolveCountry(req, lookup); got != "DE" {
		t.Fatalf("country = %q, want DE", got)
	}
}
