package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/imageproc"
	"server/internal/infra"
	"server/internal/providers/replicate"
	"server/internal/storage"
)

// ModelInvoker is the slice of the provider client the handlers use.
type ModelInvoker interface {
	HasCredentials() bool
	Run(ctx context.Context, style replicate.Style, dataURI string) (*replicate.Prediction, error)
}

// ImageNormalizer converts source images into provider-ready data URIs.
type ImageNormalizer interface {
	FromURL(ctx context.Context, url string) (*imageproc.NormalizedImage, error)
	FromBytes(data []byte) (*imageproc.NormalizedImage, error)
}

// App is the handler container; everything it needs is injected at startup.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Invoker    ModelInvoker
	Normalizer ImageNormalizer
	Categories domain.CategoryRepository
	Products   domain.ProductRepository
	Designs    domain.DesignRepository
	Analytics  domain.AnalyticsRepository
	Store      *storage.FileStore
}

// Stable error codes exposed to the frontend.
const (
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeMissingEnv       = "MISSING_ENV"
	CodeMissingImageURL  = "MISSING_IMAGE_URL"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeFetchError       = "FETCH_ERROR"
	CodeProcessingError  = "PROCESSING_ERROR"
	CodeModelRejected    = "MODEL_REJECTED"
	CodeInvalidOutput    = "INVALID_OUTPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeServerError      = "SERVER_ERROR"
)

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Success   bool     `json:"success"`
	ErrorCode string   `json:"errorCode"`
	Message   string   `json:"message"`
	Allow     []string `json:"allow,omitempty"`
	// Diagnostic fields for INVALID_OUTPUT responses.
	PredictionID string   `json:"predictionId,omitempty"`
	OutputType   string   `json:"outputType,omitempty"`
	OutputKeys   []string `json:"outputKeys,omitempty"`
}

func (a *App) fail(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{ErrorCode: code, Message: message})
}
