package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// ErrMissingAPIToken indicates that the client was configured without credentials.
var ErrMissingAPIToken = errors.New("replicate: api token is required")

// Prediction statuses reported by the provider.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// ModelRef identifies a model, optionally pinned to a version.
type ModelRef struct {
	Owner   string
	Name    string
	Version string
}

// ParseModelRef parses "owner/name" or "owner/name:version".
func ParseModelRef(ref string) (ModelRef, error) {
	ref = strings.TrimSpace(ref)
	var version string
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		version = ref[i+1:]
		ref = ref[:i]
	}
	owner, name, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || name == "" {
		return ModelRef{}, fmt.Errorf("replicate: invalid model ref %q", ref)
	}
	return ModelRef{Owner: owner, Name: name, Version: version}, nil
}

// MustParseModelRef is ParseModelRef for static table entries.
func MustParseModelRef(ref string) ModelRef {
	parsed, err := ParseModelRef(ref)
	if err != nil {
		panic(err)
	}
	return parsed
}

func (m ModelRef) String() string {
	s := m.Owner + "/" + m.Name
	if m.Version != "" {
		s += ":" + m.Version
	}
	return s
}

// Prediction is one asynchronous inference job. It is never persisted;
// callers poll it to a terminal status and drop it.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// Terminal reports whether the prediction has finished, successfully or not.
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Options configures the Replicate client.
type Options struct {
	APIToken     string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
}

// Client performs HTTP calls to the Replicate predictions API. It is
// constructed once in main and injected; handlers never reach for package
// state.
type Client struct {
	apiToken     string
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiToken:     strings.TrimSpace(opts.APIToken),
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiToken != ""
}

type modelResponse struct {
	LatestVersion struct {
		ID string `json:"id"`
	} `json:"latest_version"`
}

// ResolveVersion returns the version id for a model ref, querying the
// provider's model metadata when no version is pinned.
func (c *Client) ResolveVersion(ctx context.Context, ref ModelRef) (string, error) {
	if ref.Version != "" {
		return ref.Version, nil
	}
	var decoded modelResponse
	path := fmt.Sprintf("/v1/models/%s/%s", ref.Owner, ref.Name)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &decoded); err != nil {
		return "", err
	}
	if decoded.LatestVersion.ID == "" {
		return "", fmt.Errorf("replicate: model %s has no latest version", ref)
	}
	return decoded.LatestVersion.ID, nil
}

// CreatePrediction submits an inference job for the given model version.
func (c *Client) CreatePrediction(ctx context.Context, version string, input map[string]any) (*Prediction, error) {
	payload := map[string]any{"version": version, "input": input}
	var pred Prediction
	if err := c.doJSON(ctx, http.MethodPost, "/v1/predictions", payload, &pred); err != nil {
		return nil, err
	}
	if pred.ID == "" {
		return nil, errors.New("replicate: prediction id missing from create response")
	}
	return &pred, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	var pred Prediction
	if err := c.doJSON(ctx, http.MethodGet, "/v1/predictions/"+id, nil, &pred); err != nil {
		return nil, err
	}
	return &pred, nil
}

// Run resolves the style's model version, submits the job and polls until a
// terminal status. The poll cadence is fixed; the caller bounds the wait via
// ctx. On failed or canceled jobs the returned error wraps
// domain.ErrModelRejected and carries the provider's message; the prediction
// is returned alongside so callers can report its id.
func (c *Client) Run(ctx context.Context, style Style, dataURI string) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}
	version, err := c.ResolveVersion(ctx, style.Model)
	if err != nil {
		return nil, err
	}
	pred, err := c.CreatePrediction(ctx, version, style.BuildInput(dataURI))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", style.Model.String()).
		Str("prediction_id", pred.ID).
		Msg("replicate: prediction created")

	for !pred.Terminal() {
		select {
		case <-ctx.Done():
			return pred, fmt.Errorf("replicate: waiting for prediction %s: %w", pred.ID, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		next, err := c.GetPrediction(ctx, pred.ID)
		if err != nil {
			return pred, err
		}
		pred = next
	}

	if pred.Status != StatusSucceeded {
		msg := strings.TrimSpace(pred.Error)
		if msg == "" {
			msg = pred.Status
		}
		return pred, fmt.Errorf("%w: %s", domain.ErrModelRejected, msg)
	}
	return pred, nil
}

type errorResponse struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	if !c.HasCredentials() {
		return ErrMissingAPIToken
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("replicate: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			if msg := strings.TrimSpace(detail.Detail); msg != "" {
				return fmt.Errorf("replicate: %s", msg)
			}
			if msg := strings.TrimSpace(detail.Title); msg != "" {
				return fmt.Errorf("replicate: %s", msg)
			}
		}
		return fmt.Errorf("replicate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("replicate: decode response: %w", err)
	}
	return nil
}
