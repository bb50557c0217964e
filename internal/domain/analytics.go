package domain

import "time"

// RequestMetric identifies one counted request for daily analytics.
type RequestMetric struct {
	Endpoint string
	Country  string
	Success  bool
}

// AnalyticsDaily aggregates request metrics for a specific day and endpoint.
type AnalyticsDaily struct {
	Day       time.Time
	Endpoint  string
	Country   string
	Requests  int
	Successes int
	Failures  int
	UpdatedAt time.Time
}
