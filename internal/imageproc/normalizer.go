package imageproc

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"server/internal/domain"
)

// Normalizer converts arbitrary source images into the canonical form the
// provider accepts: PNG, fit inside a square bound, encoded as a data URI.
type Normalizer struct {
	maxDimension int
	maxBytes     int64
	httpClient   *http.Client
}

// NormalizedImage is the canonical request payload for the provider. The
// buffer lives only for the duration of one request.
type NormalizedImage struct {
	Data    []byte
	DataURI string
	Width   int
	Height  int
}

// Options configures a Normalizer.
type Options struct {
	MaxDimension int
	MaxBytes     int64
	HTTPClient   *http.Client
}

// NewNormalizer constructs a Normalizer with sane defaults.
func NewNormalizer(opts Options) *Normalizer {
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = 2048
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Normalizer{
		maxDimension: maxDim,
		maxBytes:     opts.MaxBytes,
		httpClient:   httpClient,
	}
}

// FromURL fetches the image at rawURL and normalizes it.
func (n *Normalizer) FromURL(ctx context.Context, rawURL string) (*NormalizedImage, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrFetch, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetch, err)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetch, resp.StatusCode)
	}
	body := resp.Body
	if n.maxBytes > 0 {
		body = struct {
			io.Reader
			io.Closer
		}{io.LimitReader(resp.Body, n.maxBytes+1), resp.Body}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetch, err)
	}
	if n.maxBytes > 0 && int64(len(data)) > n.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrProcessing, n.maxBytes)
	}
	return n.FromBytes(data)
}

// FromBytes decodes raw image bytes, fits them inside the configured bound
// without upscaling, and re-encodes as PNG.
func (n *Normalizer) FromBytes(data []byte) (*NormalizedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrProcessing)
	}
	if n.maxBytes > 0 && int64(len(data)) > n.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrProcessing, n.maxBytes)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProcessing, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > n.maxDimension || bounds.Dy() > n.maxDimension {
		img = imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", domain.ErrProcessing, err)
	}

	encoded := buf.Bytes()
	return &NormalizedImage{
		Data:    encoded,
		DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(encoded),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}, nil
}
