// Package render turns a travel package into the preview document and the downloadable
// brochure formats.
package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
)

// DefaultScale is the rasterisation factor applied to embedded images relative to their
// printed size at 96 dpi.
const DefaultScale = 3

type Config struct {
	// Scale multiplies the pixel size of embedded images. Zero means DefaultScale.
	Scale float64
	// Client fetches remote images. Nil means http.DefaultClient.
	Client   *http.Client
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Exporter implements studio.Exporter for PDF, flyer JPEG and standalone HTML.
type Exporter struct {
	scale  float64
	images *Loader
	log    zerolog.Logger
}

func New(cfg Config) *Exporter {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}
	log := cfg.Logger.With().Str("component", "render").Logger()
	return &Exporter{
		scale:  cfg.Scale,
		images: NewLoader(cfg.Client, cfg.CacheTTL, log),
		log:    log,
	}
}

var _ studio.Exporter = (*Exporter)(nil)

func (e *Exporter) Export(ctx context.Context, w io.Writer, kind studio.ExportKind, pkg *model.TravelPackage, opts studio.ExportOptions) error {
	if pkg == nil {
		return fmt.Errorf("no package to export")
	}
	start := time.Now()
	var err error
	switch kind {
	case studio.ExportPDF:
		err = e.PDF(ctx, w, pkg, opts)
	case studio.ExportJPEG:
		err = e.FlyerJPEG(ctx, w, pkg)
	case studio.ExportHTML:
		err = Document(w, pkg)
	default:
		err = fmt.Errorf("unknown export kind %q", kind)
	}
	if err != nil {
		return err
	}
	e.log.Debug().Str("kind", string(kind)).Dur("took", time.Since(start)).Msg("rendered")
	return nil
}

// Filename is the download name for kind.
func (e *Exporter) Filename(kind studio.ExportKind, pkg *model.TravelPackage) string {
	switch kind {
	case studio.ExportJPEG:
		return Filename(pkg, "_Flyer", "jpg")
	case studio.ExportHTML:
		return Filename(pkg, "", "html")
	}
	return Filename(pkg, "", "pdf")
}

var unsafeName = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// Filename builds "<package name><suffix>.<ext>". Characters that are not allowed in file
// names become underscores; a blank name becomes "Itinerary".
func Filename(pkg *model.TravelPackage, suffix, ext string) string {
	name := ""
	if pkg != nil {
		name = pkg.PackageName
	}
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" {
		name = "Itinerary"
	}
	return name + suffix + "." + ext
}

// parseHex reads #rgb or #rrggbb. Anything else yields fallback.
func parseHex(s string, fallback color.RGBA) color.RGBA {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// dayLabel renders the zero-padded day label used across formats.
func dayLabel(n int) string {
	return fmt.Sprintf("Day %02d", n)
}

func companyOrDefault(p *model.TravelPackage) string {
	if strings.TrimSpace(p.CompanyName) == "" {
		return "Adventure Co."
	}
	return p.CompanyName
}

// overlayAlpha is the darkening applied over the cover image.
func overlayAlpha(t model.ThemeType) float64 {
	if t == model.ThemeLuxe {
		return 0.3
	}
	return 0.5
}

func priceValue(p *model.TravelPackage, r model.PricingRow) string {
	if strings.TrimSpace(r.Value) == "" {
		return p.Currency + " -"
	}
	return p.Currency + " " + r.Value
}

const (
	introTitle  = "Journey Beyond Boundaries"
	introText   = "Welcome to a road-trip redefined. We've captured the essence of the path ahead in these curated pointers, ensuring every day is a milestone of adventure."
	footerLine  = "Bespoke Journeys - Registered Travel Provider"
	pricingHead = "Package Investment"
)
