package pipeline

import (
	"strings"

	"qrgen/internal/engine/qr"
)

type ColorPreset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// ColorPresets is the fixed palette offered by the form, first entry is the default.
var ColorPresets = []ColorPreset{
	{Key: "black", Label: "Black", Hex: "#000000"},
	{Key: "navy", Label: "Navy", Hex: "#1e3a5f"},
	{Key: "green", Label: "Green", Hex: "#15803d"},
	{Key: "blue", Label: "Blue", Hex: "#1d4ed8"},
	{Key: "pink", Label: "Pink", Hex: "#db2777"},
	{Key: "red", Label: "Red", Hex: "#dc2626"},
}

// ResolveColor maps a preset key, preset label or raw hex value to a hex
// colour. Anything unrecognised falls back to black.
func ResolveColor(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range ColorPresets {
		if strings.EqualFold(s, p.Key) || strings.EqualFold(s, p.Label) {
			return p.Hex
		}
	}
	if strings.HasPrefix(s, "#") {
		if _, err := qr.ParseHexColor(s); err == nil {
			return strings.ToLower(s)
		}
	}
	return ColorPresets[0].Hex
}
