package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

func TestPreset_Complete(t *testing.T) {
	for _, th := range model.Themes {
		s := Preset(th)
		assert.NotEmpty(t, s.PrimaryColor, th)
		assert.NotEmpty(t, s.AccentColor, th)
		assert.NotEmpty(t, s.BackgroundColor, th)
		assert.NotEmpty(t, s.HeadingFont, th)
		assert.NotEmpty(t, s.HeadingWeight, th)
		assert.Contains(t, []model.FontStyle{model.FontNormal, model.FontItalic}, s.HeadingStyle, th)
		assert.NotEmpty(t, s.BodyFont, th)
		assert.NotEmpty(t, s.BodyWeight, th)
		assert.Contains(t, []model.FontStyle{model.FontNormal, model.FontItalic}, s.BodyStyle, th)
		assert.Contains(t, Fonts(), s.HeadingFont, th)
		assert.Contains(t, Fonts(), s.BodyFont, th)
	}
}

func TestPreset_Distinct(t *testing.T) {
	assert.NotEqual(t, Preset(model.ThemeLuxe), Preset(model.ThemeVanguard))
	assert.NotEqual(t, Preset(model.ThemeVanguard), Preset(model.ThemeWanderlust))
}

func TestPreset_UnknownFallsBackToLuxe(t *testing.T) {
	assert.Equal(t, Preset(model.ThemeLuxe), Preset("neon"))
}

func TestFonts_ReturnsCopy(t *testing.T) {
	f := Fonts()
	f[0] = "Comic Sans"
	assert.NotEqual(t, "Comic Sans", Fonts()[0])
}

func TestName(t *testing.T) {
	assert.Equal(t, "Modern Vanguard", Name(model.ThemeVanguard))
	assert.Equal(t, "neon", Name("neon"))
}
