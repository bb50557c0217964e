package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires every endpoint behind the shared middleware chain. CORS
// runs outermost so its headers survive every failure path, including
// panics.
func NewRouter(app *handlers.App, analytics middleware.AnalyticsRecorder, country middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.CORS,
		middleware.RequestID,
		recoverJSON(app),
		middleware.Logger(app.Logger),
		buildIDHeader(app.Config.BuildID),
		middleware.Analytics(analytics, country),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, handlers.CodeNotFound,
			fmt.Sprintf("API route not found: %s", req.URL.Path), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, handlers.CodeMethodNotAllowed,
			"method not allowed", []string{http.MethodPost})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/version", app.Version)
		r.Get("/analytics/summary", app.AnalyticsSummary)

		r.Route("/ai", func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			r.Get("/styles", app.AIStyles)
			r.Post("/remove-bg", app.AIRemoveBackground)
			r.Post("/cartoon", app.AICartoon)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.CategoriesList)
			r.Post("/", app.CategoriesCreate)
			r.Patch("/reorder", app.CategoriesReorder)
			r.Put("/{id}", app.CategoriesUpdate)
			r.Delete("/{id}", app.CategoriesDelete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/{id}/delete-image", app.ProductsDeleteImage)
		})

		r.Route("/designs", func(r chi.Router) {
			r.Get("/", app.DesignsList)
			r.Post("/", app.DesignsCreate)
			r.Get("/{id}", app.DesignsGet)
			r.Get("/{id}/export", app.DesignsExport)
			r.Delete("/{id}", app.DesignsDelete)
		})
	})

	return r
}

// recoverJSON converts panics into the structured SERVER_ERROR shape instead
// of chi's plain-text 500.
func recoverJSON(app *handlers.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					app.Logger.Error().Interface("panic", rec).
						Str("path", req.URL.Path).
						Msg("recovered from panic")
					writeError(w, http.StatusInternalServerError, handlers.CodeServerError,
						fmt.Sprint(rec), nil)
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

func buildIDHeader(buildID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Backend-Build", buildID)
			next.ServeHTTP(w, req)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, allow []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": false, "errorCode": code, "message": message}
	if len(allow) > 0 {
		body["allow"] = allow
	}
	_ = json.NewEncoder(w).Encode(body)
}
