package handlers

import (
	"net/http"
	"time"
)

// Health handles GET /api/health.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// Version handles GET /api/version.
func (a *App) Version(w http.ResponseWriter, r *http.Request) {
	commit := a.Config.CommitSHA
	if commit == "" {
		commit = "unknown"
	}
	env := a.Config.DeployEnv
	if env == "" {
		env = a.Config.AppEnv
	}
	a.json(w, http.StatusOK, map[string]any{
		"buildId": a.Config.BuildID,
		"commit":  commit,
		"env":     env,
	})
}
