package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/imageproc"
	"server/internal/providers/replicate"
)

type aiSuccess struct {
	Success      bool   `json:"success"`
	URL          string `json:"url"`
	PredictionID string `json:"predictionId"`
}

type removeBGRequest struct {
	ImageURL string `json:"imageUrl"`
}

type cartoonRequest struct {
	ImageURL string `json:"imageUrl"`
	StyleID  string `json:"styleId"`
}

type cartoonMeta struct {
	StyleID string `json:"styleId"`
}

// AIRemoveBackground handles POST /api/ai/remove-bg.
func (a *App) AIRemoveBackground(w http.ResponseWriter, r *http.Request) {
	if !a.checkProviderEnv(w) {
		return
	}
	var req removeBGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		a.fail(w, http.StatusBadRequest, CodeMissingImageURL, "imageUrl is required")
		return
	}
	img, err := a.Normalizer.FromURL(r.Context(), req.ImageURL)
	if err != nil {
		a.failNormalize(w, err)
		return
	}
	a.invoke(w, r, replicate.BackgroundRemovalStyle, img)
}

// AICartoon handles POST /api/ai/cartoon. It accepts multipart form data
// (uploaded "image" file or "imageUrl" field plus a "meta" JSON blob) the
// way the configurator submits it, and plain JSON for API clients.
func (a *App) AICartoon(w http.ResponseWriter, r *http.Request) {
	if !a.checkProviderEnv(w) {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		a.cartoonMultipart(w, r)
		return
	}

	var req cartoonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		a.fail(w, http.StatusBadRequest, CodeMissingImageURL, "imageUrl is required")
		return
	}
	img, err := a.Normalizer.FromURL(r.Context(), req.ImageURL)
	if err != nil {
		a.failNormalize(w, err)
		return
	}
	a.invoke(w, r, replicate.StyleFor(replicate.StyleID(req.StyleID)), img)
}

func (a *App) cartoonMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
		a.fail(w, http.StatusBadRequest, CodeUploadFailed, "invalid multipart payload")
		return
	}

	var img *imageproc.NormalizedImage
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		a.Logger.Debug().Str("filename", header.Filename).Msg("cartoon: file upload")
		data, err := io.ReadAll(io.LimitReader(file, a.Config.MaxUploadBytes+1))
		if err != nil || int64(len(data)) > a.Config.MaxUploadBytes {
			a.fail(w, http.StatusBadRequest, CodeUploadFailed, "uploaded file too large or unreadable")
			return
		}
		img, err = a.Normalizer.FromBytes(data)
		if err != nil {
			a.failNormalize(w, err)
			return
		}
	} else if rawURL := strings.TrimSpace(r.FormValue("imageUrl")); rawURL != "" {
		var err error
		img, err = a.Normalizer.FromURL(r.Context(), rawURL)
		if err != nil {
			a.failNormalize(w, err)
			return
		}
	} else {
		a.fail(w, http.StatusBadRequest, CodeUploadFailed, "no image file or imageUrl provided")
		return
	}

	styleID := replicate.StyleToonInk
	if raw := r.FormValue("meta"); raw != "" {
		var meta cartoonMeta
		// A malformed meta blob falls back to the default style.
		if err := json.Unmarshal([]byte(raw), &meta); err == nil && meta.StyleID != "" {
			styleID = replicate.StyleID(meta.StyleID)
		}
	}
	a.invoke(w, r, replicate.StyleFor(styleID), img)
}

func (a *App) checkProviderEnv(w http.ResponseWriter) bool {
	if a.Invoker == nil || !a.Invoker.HasCredentials() {
		a.fail(w, http.StatusInternalServerError, CodeMissingEnv, "Missing REPLICATE_API_TOKEN")
		return false
	}
	return true
}

func (a *App) failNormalize(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrFetch):
		a.fail(w, http.StatusBadGateway, CodeFetchError, err.Error())
	case errors.Is(err, domain.ErrProcessing):
		a.fail(w, http.StatusUnprocessableEntity, CodeProcessingError, err.Error())
	default:
		a.fail(w, http.StatusInternalServerError, CodeServerError, err.Error())
	}
}

// invoke runs the shared tail of both AI endpoints: submit, poll, resolve,
// respond. The poll budget bounds how long a stuck provider job can hold the
// request.
func (a *App) invoke(w http.ResponseWriter, r *http.Request, style replicate.Style, img *imageproc.NormalizedImage) {
	ctx, cancel := context.WithTimeout(r.Context(), a.Config.ReplicatePollBudget)
	defer cancel()

	pred, err := a.Invoker.Run(ctx, style, img.DataURI)
	predictionID := ""
	if pred != nil {
		predictionID = pred.ID
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrModelRejected):
			a.json(w, http.StatusUnprocessableEntity, errorBody{
				ErrorCode:    CodeModelRejected,
				Message:      err.Error(),
				PredictionID: predictionID,
			})
		case errors.Is(err, context.DeadlineExceeded):
			a.json(w, http.StatusGatewayTimeout, errorBody{
				ErrorCode:    CodeServerError,
				Message:      "timed out waiting for the model",
				PredictionID: predictionID,
			})
		default:
			a.fail(w, http.StatusInternalServerError, CodeServerError, err.Error())
		}
		return
	}

	url, ok := replicate.ResolveOutputURL(pred.Output)
	if !ok {
		kind, keys := replicate.DescribeOutput(pred.Output)
		a.Logger.Warn().
			Str("prediction_id", pred.ID).
			Str("output_type", kind).
			Strs("output_keys", keys).
			Msg("ai: provider output did not match any known shape")
		a.json(w, http.StatusBadGateway, errorBody{
			ErrorCode:    CodeInvalidOutput,
			Message:      "model succeeded but returned no usable url",
			PredictionID: pred.ID,
			OutputType:   kind,
			OutputKeys:   keys,
		})
		return
	}

	a.Logger.Info().
		Str("model", style.Model.String()).
		Str("prediction_id", pred.ID).
		Msg("ai: pipeline succeeded")
	a.json(w, http.StatusOK, aiSuccess{Success: true, URL: url, PredictionID: pred.ID})
}
