package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"imgsrc":      imageSource,
	"dayLabel":    dayLabel,
	"themeName":   theme.Name,
	"price":       func(p *model.TravelPackage, r model.PricingRow) string { return priceValue(p, r) },
	"company":     companyOrDefault,
	"introTitle":  func() string { return introTitle },
	"introText":   func() string { return introText },
	"pricingHead": func() string { return pricingHead },
	"footerLine":  func() string { return footerLine },
}

// Each view is its own template set because they all define "body".
var views = map[string]*template.Template{
	string(studio.StepUpload):  parseView("upload.html"),
	string(studio.StepEdit):    parseView("edit.html"),
	string(studio.StepPreview): parseView("preview.html", "brochure.html"),
	"document":                 parseView("document.html", "brochure.html"),
}

func parseView(files ...string) *template.Template {
	patterns := []string{"templates/layout.html"}
	for _, f := range files {
		patterns = append(patterns, "templates/"+f)
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, patterns...))
}

type page struct {
	Title   string
	Vars    template.CSS
	Overlay float64
	State   studio.State
}

func newPage(s studio.State) page {
	pg := page{Title: "Itinerary Architect", State: s, Overlay: overlayAlpha(model.ThemeLuxe)}
	styles := theme.Preset(model.ThemeLuxe)
	if p := s.Package; p != nil {
		pg.Title = p.PackageName
		pg.Overlay = overlayAlpha(p.Theme)
		styles = p.Styles
	}
	pg.Vars = cssVars(styles)
	return pg
}

// View renders the screen for the current step.
func View(w io.Writer, s studio.State) error {
	name := string(s.Step)
	t, ok := views[name]
	if !ok {
		return fmt.Errorf("no view for step %q", s.Step)
	}
	if s.Step != studio.StepUpload && s.Package == nil {
		t, name = views[string(studio.StepUpload)], string(studio.StepUpload)
	}
	return t.ExecuteTemplate(w, name, newPage(s))
}

// Document renders the brochure as a standalone HTML page.
func Document(w io.Writer, pkg *model.TravelPackage) error {
	s := studio.State{Step: studio.StepPreview, Package: pkg}
	return views["document"].ExecuteTemplate(w, "document", newPage(s))
}

// imageSource admits data:image URLs and http(s) URLs as image sources.
func imageSource(s string) template.URL {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"):
		return template.URL(s)
	}
	return ""
}

var (
	cssColor  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	cssWeight = regexp.MustCompile(`^[1-9]00$`)
	cssUnsafe = regexp.MustCompile(`["'\\;{}<>]`)
)

func cssVars(st model.ThemeStyles) template.CSS {
	def := theme.Preset(model.ThemeLuxe)
	pick := func(v, fallback string, re *regexp.Regexp) string {
		if re.MatchString(v) {
			return v
		}
		return fallback
	}
	fontName := func(v, fallback string) string {
		v = strings.TrimSpace(cssUnsafe.ReplaceAllString(v, ""))
		if v == "" {
			v = fallback
		}
		return `"` + v + `"`
	}
	fontStyle := func(v model.FontStyle) string {
		if v == model.FontItalic {
			return "italic"
		}
		return "normal"
	}
	vars := []string{
		"--primary: " + pick(st.PrimaryColor, def.PrimaryColor, cssColor),
		"--accent: " + pick(st.AccentColor, def.AccentColor, cssColor),
		"--background: " + pick(st.BackgroundColor, def.BackgroundColor, cssColor),
		"--heading-font: " + fontName(st.HeadingFont, def.HeadingFont),
		"--heading-weight: " + pick(st.HeadingWeight, def.HeadingWeight, cssWeight),
		"--heading-style: " + fontStyle(st.HeadingStyle),
		"--body-font: " + fontName(st.BodyFont, def.BodyFont),
		"--body-weight: " + pick(st.BodyWeight, def.BodyWeight, cssWeight),
		"--body-style: " + fontStyle(st.BodyStyle),
	}
	return template.CSS(strings.Join(vars, "; ") + ";")
}
