// Package theme maps a theme selection to its preset style bundle.
package theme

import "github.com/thywilljoshua/itinerary-architect/internal/model"

var presets = map[model.ThemeType]model.ThemeStyles{
	model.ThemeLuxe: {
		PrimaryColor:    "#1a1a1a",
		AccentColor:     "#b8975a",
		BackgroundColor: "#ffffff",
		HeadingFont:     "Playfair Display",
		HeadingWeight:   "700",
		HeadingStyle:    model.FontItalic,
		BodyFont:        "Lato",
		BodyWeight:      "300",
		BodyStyle:       model.FontNormal,
	},
	model.ThemeVanguard: {
		PrimaryColor:    "#18181b",
		AccentColor:     "#e11d48",
		BackgroundColor: "#fafafa",
		HeadingFont:     "Montserrat",
		HeadingWeight:   "900",
		HeadingStyle:    model.FontNormal,
		BodyFont:        "Inter",
		BodyWeight:      "400",
		BodyStyle:       model.FontNormal,
	},
	model.ThemeWanderlust: {
		PrimaryColor:    "#3f2e1e",
		AccentColor:     "#c2410c",
		BackgroundColor: "#fdfbf7",
		HeadingFont:     "Cormorant Garamond",
		HeadingWeight:   "600",
		HeadingStyle:    model.FontItalic,
		BodyFont:        "Source Serif Pro",
		BodyWeight:      "400",
		BodyStyle:       model.FontNormal,
	},
}

var names = map[model.ThemeType]string{
	model.ThemeLuxe:       "Classic Luxe",
	model.ThemeVanguard:   "Modern Vanguard",
	model.ThemeWanderlust: "Adventurous Wanderlust",
}

// Preset returns the complete style bundle for t. Unknown themes fall back to luxe.
func Preset(t model.ThemeType) model.ThemeStyles {
	if s, ok := presets[t]; ok {
		return s
	}
	return presets[model.ThemeLuxe]
}

// Name is the display name of t.
func Name(t model.ThemeType) string {
	if n, ok := names[t]; ok {
		return n
	}
	return string(t)
}

var fonts = []string{
	"Playfair Display",
	"Cormorant Garamond",
	"Merriweather",
	"Source Serif Pro",
	"Montserrat",
	"Oswald",
	"Raleway",
	"Inter",
	"Lato",
	"Roboto",
}

// serif marks the preset families that PDFs set in the serif stand-in face.
var serif = map[string]bool{
	"Playfair Display":   true,
	"Cormorant Garamond": true,
	"Merriweather":       true,
	"Source Serif Pro":   true,
}

// Fonts returns the preset font families offered by the editor. Style fields accept any
// family; this list is only the menu.
func Fonts() []string {
	out := make([]string, len(fonts))
	copy(out, fonts)
	return out
}

// IsSerif reports whether family is a known serif family.
func IsSerif(family string) bool {
	return serif[family]
}
