package handlers

import (
	"net/http"
	"strconv"
)

type analyticsRowJSON struct {
	Day       string `json:"day"`
	Endpoint  string `json:"endpoint"`
	Country   string `json:"country,omitempty"`
	Requests  int    `json:"requests"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
}

// AnalyticsSummary handles GET /api/analytics/summary: recent per-day
// request counters, newest first. ?days caps the row count.
func (a *App) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	if a.Analytics == nil {
		a.json(w, http.StatusOK, map[string]any{"items": []analyticsRowJSON{}})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	rows, err := a.Analytics.GetSummary(r.Context(), limit)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load analytics")
		return
	}
	out := make([]analyticsRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, analyticsRowJSON{
			Day:       row.Day.Format("2006-01-02"),
			Endpoint:  row.Endpoint,
			Country:   row.Country,
			Requests:  row.Requests,
			Successes: row.Successes,
			Failures:  row.Failures,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}
