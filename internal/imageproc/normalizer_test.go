package imageproc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesKeepsSmallImageSize(t *testing.T) {
	n := NewNormalizer(Options{MaxDimension: 2048})

	out, err := n.FromBytes(encodePNG(t, 100, 60))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Width != 100 || out.Height != 60 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
	if !strings.HasPrefix(out.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix: %.40s", out.DataURI)
	}
	if _, err := png.Decode(bytes.NewReader(out.Data)); err != nil {
		t.Fatalf("output is not valid png: %v", err)
	}
}

func TestFromBytesDownscalesOversizeKeepingAspect(t *testing.T) {
	n := NewNormalizer(Options{MaxDimension: 64})

	out, err := n.FromBytes(encodePNG(t, 200, 100))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Width != 64 || out.Height != 32 {
		t.Fatalf("fit produced %dx%d, want 64x32", out.Width, out.Height)
	}
}

func TestFromBytesReencodesJPEGAsPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	n := NewNormalizer(Options{})
	out, err := n.FromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out.Data)); err != nil {
		t.Fatalf("output is not png: %v", err)
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	n := NewNormalizer(Options{})

	_, err := n.FromBytes([]byte("definitely not an image"))
	if !errors.Is(err, domain.ErrProcessing) {
		t.Fatalf("error = %v, want ErrProcessing", err)
	}
}

func TestFromBytesRejectsEmpty(t *testing.T) {
	n := NewNormalizer(Options{})

	if _, err := n.FromBytes(nil); !errors.Is(err, domain.ErrProcessing) {
		t.Fatalf("error = %v, want ErrProcessing", err)
	}
}

func TestFromURLFetchesAndNormalizes(t *testing.T) {
	payload := encodePNG(t, 20, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	n := NewNormalizer(Options{HTTPClient: srv.Client()})
	out, err := n.FromURL(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("from url: %v", err)
	}
	if out.Width != 20 || out.Height != 20 {
		t.Fatalf("unexpected dimensions: %dx%d", out.Width, out.Height)
	}
}

func TestFromURLSurfacesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	n := NewNormalizer(Options{HTTPClient: srv.Client()})
	if _, err := n.FromURL(context.Background(), srv.URL); !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
}

func TestFromURLRejectsInvalidURL(t *testing.T) {
	n := NewNormalizer(Options{})

	if _, err := n.FromURL(context.Background(), "::not-a-url"); !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
}

func TestFromURLEnforcesByteBudget(t *testing.T) {
	payload := encodePNG(t, 300, 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	n := NewNormalizer(Options{MaxBytes: 16, HTTPClient: srv.Client()})
	if _, err := n.FromURL(context.Background(), srv.URL); !errors.Is(err, domain.ErrProcessing) {
		t.Fatalf("error = %v, want ErrProcessing", err)
	}
}
