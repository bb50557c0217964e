package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// IncrementRequest upserts the counter row for (day, endpoint, country).
func (r *AnalyticsRepositoryPG) IncrementRequest(ctx context.Context, day string, metric domain.RequestMetric) error {
	success, failure := 0, 0
	if metric.Success {
		success = 1
	} else {
		failure = 1
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO analytics_daily (day, endpoint, country, requests, successes, failures)
VALUES ($1, $2, $3, 1, $4, $5)
ON CONFLICT (day, endpoint, country) DO UPDATE SET
    requests = analytics_daily.requests + 1,
    successes = analytics_daily.successes + EXCLUDED.successes,
    failures = analytics_daily.failures + EXCLUDED.failures,
    updated_at = NOW();
`, day, metric.Endpoint, metric.Country, success, failure)
	return err
}

// GetSummary returns the most recent counter rows.
func (r *AnalyticsRepositoryPG) GetSummary(ctx context.Context, limit int) ([]domain.AnalyticsDaily, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx, `
SELECT day, endpoint, country, requests, successes, failures, updated_at
FROM analytics_daily
ORDER BY day DESC, endpoint
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AnalyticsDaily
	for rows.Next() {
		var a domain.AnalyticsDaily
		if err := rows.Scan(&a.Day, &a.Endpoint, &a.Country, &a.Requests, &a.Successes, &a.Failures, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
