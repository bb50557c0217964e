package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/pkg/zip"
)

type designCreateRequest struct {
	Name         string          `json:"name"`
	CanvasData   json.RawMessage `json:"canvasData"`
	PreviewImage string          `json:"previewImage"`
}

type designJSON struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CanvasData json.RawMessage `json:"canvasData,omitempty"`
	PreviewKey string          `json:"previewKey,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toDesignJSON(d domain.Design, includeCanvas bool) designJSON {
	out := designJSON{
		ID:         d.ID,
		Name:       d.Name,
		PreviewKey: d.PreviewKey,
		CreatedAt:  d.CreatedAt,
	}
	if includeCanvas {
		out.CanvasData = json.RawMessage(d.CanvasData)
	}
	return out
}

// DesignsCreate handles POST /api/designs: saves a configurator canvas and,
// when a preview data URI is attached, persists it to the asset store.
func (a *App) DesignsCreate(w http.ResponseWriter, r *http.Request) {
	var req designCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CanvasData) == 0 {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "canvasData is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = domain.DefaultDesignName
	}

	design := &domain.Design{
		ID:         uuid.NewString(),
		Name:       name,
		CanvasData: []byte(req.CanvasData),
	}

	if req.PreviewImage != "" {
		key, err := a.Store.WriteDataURI(r.Context(), "design-previews/"+design.ID+".png", req.PreviewImage)
		if err != nil {
			a.fail(w, http.StatusBadRequest, CodeBadRequest, "previewImage must be a base64 data uri")
			return
		}
		design.PreviewKey = key
	}

	if err := a.Designs.Create(r.Context(), design); err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to save design")
		return
	}
	design.CreatedAt = time.Now().UTC()
	a.json(w, http.StatusCreated, toDesignJSON(*design, false))
}

// DesignsList handles GET /api/designs.
func (a *App) DesignsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Designs.List(r.Context())
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load designs")
		return
	}
	out := make([]designJSON, 0, len(items))
	for _, d := range items {
		out = append(out, toDesignJSON(d, false))
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

// DesignsGet handles GET /api/designs/{id}, including the canvas payload.
func (a *App) DesignsGet(w http.ResponseWriter, r *http.Request) {
	design, err := a.Designs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "design not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load design")
		return
	}
	a.json(w, http.StatusOK, toDesignJSON(*design, true))
}

// DesignsExport handles GET /api/designs/{id}/export: a zip archive with
// the canvas JSON and, when present, the rendered preview.
func (a *App) DesignsExport(w http.ResponseWriter, r *http.Request) {
	design, err := a.Designs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "design not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load design")
		return
	}

	assets := []zip.Asset{{Filename: "canvas.json", MIME: "application/json", Data: design.CanvasData}}
	if design.PreviewKey != "" {
		if data, err := a.Store.Read(r.Context(), design.PreviewKey); err == nil {
			assets = append(assets, zip.Asset{Filename: "preview.png", MIME: "image/png", Data: data})
		}
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=design-%s.zip", design.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// DesignsDelete handles DELETE /api/designs/{id}; the stored preview is
// removed best-effort.
func (a *App) DesignsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	design, err := a.Designs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "design not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load design")
		return
	}
	if err := a.Designs.Delete(r.Context(), id); err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "delete failed")
		return
	}
	if design.PreviewKey != "" {
		if err := a.Store.Remove(r.Context(), design.PreviewKey); err != nil {
			a.Logger.Warn().Err(err).Str("key", design.PreviewKey).Msg("designs: failed to remove preview")
		}
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}
