package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/storage"
)

type deleteImageRequest struct {
	Target string `json:"target"`
}

// ProductsDeleteImage handles POST /api/products/{id}/delete-image: clears
// the base and/or mask image columns, scrubs the mirrored keys out of the
// specs JSONB, and best-effort removes the underlying stored objects.
func (a *App) ProductsDeleteImage(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var req deleteImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "missing request body")
		return
	}
	target := domain.ImageTarget(req.Target)
	if !domain.ValidImageTarget(target) {
		a.fail(w, http.StatusBadRequest, CodeBadRequest, "target must be base, mask or all")
		return
	}

	product, err := a.Products.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, CodeNotFound, "product not found")
			return
		}
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to load product")
		return
	}

	updates := map[string]any{}
	var keysToDelete []string
	specs := product.Specs

	clearImage := func(imageURL string, column string, specKeys ...string) {
		if imageURL != "" {
			if key, ok := storage.ExtractObjectKey(imageURL); ok {
				keysToDelete = append(keysToDelete, key)
			}
		}
		updates[column] = nil
		if specs != nil {
			for _, k := range specKeys {
				delete(specs, k)
			}
			updates["specs"] = specs
		}
	}

	if target == domain.ImageTargetBase || target == domain.ImageTargetAll {
		clearImage(product.BaseImage, "base_image", "base_image", "base_image_path")
	}
	if target == domain.ImageTargetMask || target == domain.ImageTargetAll {
		clearImage(product.MaskImage, "mask_image", "mask_image", "mask_image_path")
	}

	if err := a.Products.ClearImages(r.Context(), productID, updates); err != nil {
		a.fail(w, http.StatusInternalServerError, CodeServerError, "failed to update product")
		return
	}

	var storageErrors []string
	for _, key := range keysToDelete {
		if err := a.Store.Remove(r.Context(), key); err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("products: failed to remove stored image")
			storageErrors = append(storageErrors, err.Error())
		}
	}

	resp := map[string]any{"success": true, "message": "Images deleted successfully"}
	if len(storageErrors) > 0 {
		resp["storage_errors"] = storageErrors
	}
	a.json(w, http.StatusOK, resp)
}
