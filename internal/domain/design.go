package domain

import "time"

// DefaultDesignName is used when a design is saved without a name.
const DefaultDesignName = "Untitled design"

// Design is a saved configurator canvas. CanvasData is stored verbatim as
// JSONB; PreviewKey points at the rendered preview in the asset store.
type Design struct {
	ID         string
	Name       string
	CanvasData []byte
	PreviewKey string
	CreatedAt  time.Time
}
