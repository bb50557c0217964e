package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type categoryPayload struct {
	Name       *string `json:"name"`
	ParentID   *string `json:"parent_id"`
	SortOrder  *int    `json:"sort_order"`
	LayerLevel *int    `json:"layer_level"`
}

type categoryJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ParentID   *string `json:"parent_id"`
	SortOrder  int     `json:"sort_order"`
	LayerLevel int     `json:"layer_level"`
}

type categoryTreeJSON struct {
	categoryJSON
	Children []categoryTreeJSON `json:"children"`
}

func toCategoryJSON(c domain.Category) categoryJSON {
	return categoryJSON{
		ID:         c.ID,
		Name:       c.Name,
		ParentID:   c.ParentID,
		SortOrder:  c.SortOrder,
		LayerLevel: c.LayerLevel,
	}
}

func toTreeJSON(nodes []*domain.CategoryNode) []categoryTreeJSON {
	out := make([]categoryTreeJSON, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, categoryTreeJSON{
			categoryJSON: toCategoryJSON(n.Category),
			Children:     toTreeJSON(n.Children),
		})
	}
	return out
}

// CategoriesList handles GET /api/categories. With ?tree=true the flat list
// is assembled into a forest before rendering.
func (a *App) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Categories.List(r.Context())
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load categories")
		return
	}
	if r.URL.Query().Get("tree") == "true" {
		a.json(w, http.StatusOK, map[string]any{"items": toTreeJSON(domain.BuildCategoryTree(items))})
		return
	}
	flat := make([]categoryJSON, 0, len(items))
	for _, c := range items {
		flat = append(flat, toCategoryJSON(c))
	}
	a.json(w, http.StatusOK, map[string]any{"items": flat})
}

// CategoriesCreate handles POST /api/categories.
func (a *App) CategoriesCreate(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "invalid payload")
		return
	}
	name := ""
	if payload.Name != nil {
		name = strings.TrimSpace(*payload.Name)
	}
	if name == "" {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "name is required")
		return
	}

	siblings, err := a.Categories.ListSiblings(r.Context(), payload.ParentID)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load siblings")
		return
	}
	if hasSiblingNamed(siblings, name, "") {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, domain.ErrDuplicateCategory.Error())
		return
	}

	sortOrder := domain.NextSortOrder(siblings)
	if payload.SortOrder != nil {
		sortOrder = *payload.SortOrder
	}

	layerLevel := 1
	if payload.LayerLevel != nil {
		layerLevel = *payload.LayerLevel
	} else if payload.ParentID != nil {
		parent, err := a.Categories.GetByID(r.Context(), *payload.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.fail(w, http.StatusBadRequest, CodeBadRequest, domain.ErrParentNotFound.Error())
				return
			}
			a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load parent")
			return
		}
		layerLevel = parent.LayerLevel + 1
	}

	created, err := a.Categories.Create(r.Context(), &domain.Category{
		Name:       name,
		ParentID:   payload.ParentID,
		SortOrder:  sortOrder,
		LayerLevel: layerLevel,
	})
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "create failed")
		return
	}
	a.json(w, http.StatusCreated, toCategoryJSON(*created))
}

type reorderPayload struct {
	ParentID   *string  `json:"parent_id"`
	OrderedIDs []string `json:"ordered_ids"`
}

// CategoriesReorder handles PATCH /api/categories/reorder: rewrites sibling
// sort order to match the submitted id sequence.
func (a *App) CategoriesReorder(w http.ResponseWriter, r *http.Request) {
	var payload reorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "invalid payload")
		return
	}
	ids := make([]string, 0, len(payload.OrderedIDs))
	for _, id := range payload.OrderedIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "ordered_ids required")
		return
	}

	siblings, err := a.Categories.ListSiblings(r.Context(), payload.ParentID)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load siblings")
		return
	}
	siblingIDs := make(map[string]bool, len(siblings))
	for _, s := range siblings {
		siblingIDs[s.ID] = true
	}
	for _, id := range ids {
		if !siblingIDs[id] {
			a.fail(w, http.StatusBadRequest, CodeBadRequest, domain.ErrNotSiblings.Error())
			return
		}
	}

	ordered := domain.ReorderByIDs(siblings, ids)
	for i, c := range ordered {
		if err := a.Categories.SetSortOrder(r.Context(), c.ID, i+1); err != nil {
			a.fail(w, http.StatusInternalServerError, CodeServerError, "reorder failed")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

// CategoriesUpdate handles PUT /api/categories/{id}.
func (a *App) CategoriesUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "invalid payload")
		return
	}
	var payload categoryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "invalid payload")
		return
	}
	// parent_id: null (reparent to root) has to be told apart from the
	// field being absent, which a *string cannot express on its own.
	var presence map[string]json.RawMessage
	_ = json.Unmarshal(body, &presence)
	_, parentProvided := presence["parent_id"]

	current, err := a.Categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "category not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load category")
		return
	}

	fields := map[string]any{}
	name := current.Name
	if payload.Name != nil {
		name = strings.TrimSpace(*payload.Name)
		if name == "" {
			a.fail(w, http.StatusBadRequest, CodeBadRequest, "name is required")
			return
		}
		fields["name"] = name
	}
	parentID := current.ParentID
	reparented := false
	if parentProvided {
		parentID = payload.ParentID
		reparented = true
		fields["parent_id"] = payload.ParentID
	}
	if payload.SortOrder != nil {
		fields["sort_order"] = *payload.SortOrder
	}

	if payload.Name != nil || reparented {
		siblings, err := a.Categories.ListSiblings(r.Context(), parentID)
		if err != nil {
			a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load siblings")
			return
		}
		if hasSiblingNamed(siblings, name, id) {
			a.fail(w, http.StatusBadRequest, CodeBadRequest, domain.ErrDuplicateCategory.Error())
			return
		}
	}
	if reparented {
		if parentID != nil {
			parent, err := a.Categories.GetByID(r.Context(), *parentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					a.fail(w, http.StatusBadRequest, CodeBadRequest, domain.ErrParentNotFound.Error())
					return
				}
				a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load parent")
				return
			}
			fields["layer_level"] = parent.LayerLevel + 1
		} else {
			fields["layer_level"] = 1
		}
	}

	updated, err := a.Categories.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "category not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "update failed")
		return
	}
	a.json(w, http.StatusOK, toCategoryJSON(*updated))
}

// CategoriesDelete handles DELETE /api/categories/{id}; the schema cascades
// to children.
func (a *App) CategoriesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Categories.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "category not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "delete failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func hasSiblingNamed(siblings []domain.Category, name, excludeID string) bool {
	for _, s := range siblings {
		if s.ID == excludeID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.Name), name) {
			return true
		}
	}
	return false
}
