package domain

import "time"

// Product is a configurable merchandise model (phone case, mug, ...). Specs
// holds the raw JSONB column: print areas, linked option groups and mirrored
// image keys maintained by the frontend configurator.
type Product struct {
	ID         string
	Name       string
	CategoryID *string
	BaseImage  string
	MaskImage  string
	Specs      map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ImageTarget selects which of a product's images an operation applies to.
type ImageTarget string

const (
	ImageTargetBase ImageTarget = "base"
	ImageTargetMask ImageTarget = "mask"
	ImageTargetAll  ImageTarget = "all"
)

// ValidImageTarget reports whether t is one of the accepted targets.
func ValidImageTarget(t ImageTarget) bool {
	switch t {
	case ImageTargetBase, ImageTargetMask, ImageTargetAll:
		return true
	}
	return false
}
