package handlers

import (
	"net/http"

	"server/internal/providers/replicate"
)

// AIStyles handles GET /api/ai/styles: the static cartoonification catalog
// the configurator uses to render preset buttons.
func (a *App) AIStyles(w http.ResponseWriter, r *http.Request) {
	styles := replicate.Styles()
	items := make([]map[string]any, 0, len(styles))
	for _, s := range styles {
		items = append(items, map[string]any{
			"id":    string(s.ID),
			"label": s.Label(),
			"model": s.Model.String(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "default": string(replicate.StyleToonInk)})
}
