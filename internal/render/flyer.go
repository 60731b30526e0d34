package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

// The flyer is an A4 page at 300 dpi.
const (
	FlyerWidth  = 2480
	FlyerHeight = 3508
	pxPerMM     = FlyerWidth / 210.0
)

var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

func newFace(f *opentype.Font, px float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
}

// FlyerJPEG renders the cover block alone as a print-resolution JPEG.
func (e *Exporter) FlyerJPEG(ctx context.Context, w io.Writer, pkg *model.TravelPackage) error {
	img, err := e.flyer(ctx, pkg)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(100))
}

func (e *Exporter) flyer(ctx context.Context, pkg *model.TravelPackage) (*image.NRGBA, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	var canvas *image.NRGBA
	if src, err := e.images.Image(ctx, pkg.CoverImage()); err == nil {
		canvas = imaging.Fill(src, FlyerWidth, FlyerHeight, imaging.Center, imaging.Lanczos)
	} else {
		if pkg.CoverImage() != "" {
			e.log.Warn().Err(err).Msg("cover image skipped")
		}
		canvas = imaging.New(FlyerWidth, FlyerHeight, zinc900)
	}
	shade := imaging.New(FlyerWidth, FlyerHeight, color.Black)
	canvas = imaging.Overlay(canvas, shade, image.Pt(0, 0), overlayAlpha(pkg.Theme))

	inset := mm(coverInset)
	if pkg.LogoURL != "" {
		if logo, err := e.images.Image(ctx, pkg.LogoURL); err == nil {
			logo = imaging.Fit(logo, mm(40), mm(16), imaging.Lanczos)
			canvas = imaging.Overlay(canvas, logo, image.Pt(inset, inset), 1)
		} else {
			e.log.Warn().Err(err).Msg("logo skipped")
		}
	}

	t := &typesetter{dst: canvas}
	if err := t.right(bold, 42, strings.ToUpper(pkg.CompanyName), FlyerWidth-inset, inset+mm(8)); err != nil {
		return nil, err
	}

	inner := FlyerWidth - 2*inset
	title, err := t.wrap(bold, 190, strings.ToUpper(pkg.PackageName), inner)
	if err != nil {
		return nil, err
	}
	lineH := 180
	barY := FlyerHeight - inset - mm(50)
	y := barY - mm(10) - lineH*(len(title)-1)
	for _, ln := range title {
		if err := t.left(bold, 190, ln, inset, y); err != nil {
			return nil, err
		}
		y += lineH
	}

	bar := imaging.New(mm(24), mm(1), color.White)
	canvas = imaging.Overlay(canvas, bar, image.Pt(inset, barY), 1)
	t.dst = canvas

	col := inner / 2
	y = barY + mm(16)
	for i, pair := range [][2]string{{"DESTINATION", pkg.Destination}, {"DURATION", pkg.Duration}} {
		x := inset + i*col
		if err := t.left(regular, 36, pair[0], x, y); err != nil {
			return nil, err
		}
		if err := t.left(regular, 90, pair[1], x, y+mm(11)); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func mm(v float64) int {
	return int(v * pxPerMM)
}

// typesetter draws white text onto dst. Coordinates name the baseline.
type typesetter struct {
	dst *image.NRGBA
}

func (t *typesetter) drawer(f *opentype.Font, px float64) (*font.Drawer, error) {
	face, err := newFace(f, px)
	if err != nil {
		return nil, err
	}
	return &font.Drawer{Dst: t.dst, Src: image.White, Face: face}, nil
}

func (t *typesetter) left(f *opentype.Font, px float64, s string, x, y int) error {
	d, err := t.drawer(f, px)
	if err != nil {
		return err
	}
	defer d.Face.Close()
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
	return nil
}

func (t *typesetter) right(f *opentype.Font, px float64, s string, x, y int) error {
	d, err := t.drawer(f, px)
	if err != nil {
		return err
	}
	defer d.Face.Close()
	d.Dot = fixed.P(x-d.MeasureString(s).Ceil(), y)
	d.DrawString(s)
	return nil
}

// wrap breaks s into lines no wider than width pixels.
func (t *typesetter) wrap(f *opentype.Font, px float64, s string, width int) ([]string, error) {
	d, err := t.drawer(f, px)
	if err != nil {
		return nil, err
	}
	defer d.Face.Close()
	var lines []string
	cur := ""
	for _, word := range strings.Fields(s) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && d.MeasureString(next).Ceil() > width {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines, nil
}
