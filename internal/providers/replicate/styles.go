package replicate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StyleID names a cartoonification preset. Unknown values fall back to
// StyleToonInk.
type StyleID string

const (
	StyleToonInk   StyleID = "toon_ink"
	StyleToonMochi StyleID = "toon_mochi"
	StyleToonAnime StyleID = "toon_anime"
)

// Style binds a preset to a concrete model and input shape. BuildInput
// produces the provider payload for a normalized data URI.
type Style struct {
	ID         StyleID
	Model      ModelRef
	BuildInput func(dataURI string) map[string]any
}

var styleTable = map[StyleID]Style{
	StyleToonInk: {
		ID:    StyleToonInk,
		Model: MustParseModelRef("flux-kontext-apps/cartoonify:398ba4a9808131eae162741458435bcf145d03690cecef1467bdf81cc1ad654e"),
		BuildInput: func(dataURI string) map[string]any {
			return map[string]any{
				"input_image":  dataURI,
				"aspect_ratio": "match_input_image",
			}
		},
	},
	StyleToonMochi: {
		ID:    StyleToonMochi,
		Model: MustParseModelRef("catacolabs/cartoonify:043a7a0bb103cd8ce5c63e64161eae63a99f01028b83aa1e28e53a42d86191d3"),
		BuildInput: func(dataURI string) map[string]any {
			return map[string]any{"image": dataURI}
		},
	},
	StyleToonAnime: {
		ID:    StyleToonAnime,
		Model: MustParseModelRef("qwen-edit-apps/qwen-image-edit-plus-lora-photo-to-anime"),
		BuildInput: func(dataURI string) map[string]any {
			return map[string]any{
				"image":         []string{dataURI},
				"aspect_ratio":  "match_input_image",
				"output_format": "png",
				"go_fast":       true,
			}
		},
	},
}

// BackgroundRemovalStyle is the fixed model used by the remove-bg endpoint.
var BackgroundRemovalStyle = Style{
	ID:    "remove_bg",
	Model: MustParseModelRef("851-labs/background-remover:a029dff38972b5fda4ec5d75d7d1cd25aeff621d2cf4946a41055d7db66b80bc"),
	BuildInput: func(dataURI string) map[string]any {
		return map[string]any{
			"image":           dataURI,
			"format":          "png",
			"background_type": "rgba",
		}
	},
}

// StyleFor resolves a style id, falling back to toon_ink for empty or
// unknown values.
func StyleFor(id StyleID) Style {
	if s, ok := styleTable[id]; ok {
		return s
	}
	return styleTable[StyleToonInk]
}

// Styles lists the cartoonification presets in a stable order.
func Styles() []Style {
	return []Style{
		styleTable[StyleToonInk],
		styleTable[StyleToonMochi],
		styleTable[StyleToonAnime],
	}
}

var labelCaser = cases.Title(language.English)

// Label renders a human-readable name for a style id ("toon_ink" -> "Toon Ink").
func (s Style) Label() string {
	return labelCaser.String(strings.ReplaceAll(string(s.ID), "_", " "))
}
