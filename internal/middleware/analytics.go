package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// AnalyticsRecorder receives one metric per completed request.
type AnalyticsRecorder interface {
	IncrementRequest(ctx context.Context, day string, metric domain.RequestMetric) error
}

// Analytics counts completed requests per day, endpoint and country.
// Recording is best-effort and asynchronous; it never delays or fails the
// request. A nil recorder disables the middleware.
func Analytics(recorder AnalyticsRecorder, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			metric := domain.RequestMetric{
				Endpoint: r.Method + " " + r.URL.Path,
				Country:  ResolveCountry(r, lookup),
				Success:  rw.status < 400,
			}
			day := time.Now().UTC().Format("2006-01-02")
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = recorder.IncrementRequest(ctx, day, metric)
			}()
		})
	}
}

// ResolveCountry resolves a best-effort ISO country code for the request:
// proxy-injected headers first, then a GeoIP lookup on the client IP.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Vercel-IP-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
