package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/phpdave11/gofpdf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testPackage(t *testing.T) *model.TravelPackage {
	p := model.Draft{
		PackageName: "Ladakh Expedition",
		Destination: "Ladakh",
		Duration:    "8 Days / 7 Nights",
		Pricing: []model.PricingRow{
			{Label: "Solo Bike Price", Value: "1,200"},
			{Label: "Single Room Extra Cost"},
		},
		Inclusions: []string{"Fuel", "Inner line permits"},
		Exclusions: []string{"Flights"},
		Itinerary: []model.ItineraryDay{
			{Day: 1, Title: "Arrival in Leh", Location: "Leh", Activities: []string{"Arrive", "Acclimatize"}},
			{Day: 2, Title: "Khardung La", Location: "Nubra Valley", Activities: []string{"Cross the pass"},
				Description: "Ride over one of the highest motorable passes."},
		},
	}.Normalize(theme.Preset(model.ThemeLuxe))
	p.CompanyName = "Himalayan Riders"
	p.Itinerary[0].ImageURL = model.DataURL("image/png", pngBytes(t, 64, 36))
	return &p
}

func newTestExporter() *Exporter {
	return New(Config{Scale: 0.5, Logger: zerolog.Nop()})
}

func TestExporter_PDF(t *testing.T) {
	e := newTestExporter()
	pkg := testPackage(t)
	sink := DirSink{Dir: t.TempDir()}

	path, err := sink.Save(e.Filename(studio.ExportPDF, pkg), func(w io.Writer) error {
		return e.Export(context.Background(), w, studio.ExportPDF, pkg, studio.ExportOptions{})
	})
	require.NoError(t, err)
	assert.Equal(t, "Ladakh Expedition.pdf", filepath.Base(path))

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Pages, 2)
	assert.Equal(t, "Ladakh Expedition", info.Title)
	assert.InDelta(t, 595.28, info.Width, 1)
	assert.InDelta(t, 841.89, info.Height, 1)
}

func TestExporter_PDF_Landscape(t *testing.T) {
	e := newTestExporter()
	pkg := testPackage(t)
	pkg.Theme = model.ThemeVanguard
	pkg.Styles = theme.Preset(model.ThemeVanguard)
	path := filepath.Join(t.TempDir(), "l.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, e.PDF(context.Background(), f, pkg, studio.ExportOptions{Landscape: true}))
	require.NoError(t, f.Close())

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Pages, 2)
	assert.Greater(t, info.Width, info.Height)
}

func TestExporter_FlyerJPEG(t *testing.T) {
	e := newTestExporter()
	var buf bytes.Buffer
	require.NoError(t, e.Export(context.Background(), &buf, studio.ExportJPEG, testPackage(t), studio.ExportOptions{}))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, FlyerWidth, cfg.Width)
	assert.Equal(t, FlyerHeight, cfg.Height)
}

func TestExporter_FlyerOverlayByTheme(t *testing.T) {
	e := newTestExporter()
	pkg := testPackage(t)
	pkg.Itinerary[0].ImageURL = ""
	pkg.CompanyName = ""
	pkg.PackageName = ""
	pkg.Destination = ""
	pkg.Duration = ""

	corner := func(th model.ThemeType) uint8 {
		pkg.Theme = th
		img, err := e.flyer(context.Background(), pkg)
		require.NoError(t, err)
		return img.NRGBAAt(FlyerWidth-1, FlyerHeight-1).R
	}
	luxe, vanguard := corner(model.ThemeLuxe), corner(model.ThemeVanguard)
	assert.Greater(t, luxe, vanguard)
}

func TestExporter_HTML(t *testing.T) {
	e := newTestExporter()
	var buf bytes.Buffer
	require.NoError(t, e.Export(context.Background(), &buf, studio.ExportHTML, testPackage(t), studio.ExportOptions{}))
	out := buf.String()
	assert.Contains(t, out, "Ladakh Expedition")
	assert.Contains(t, out, "Day 01")
	assert.Contains(t, out, "No Image Selected")
	assert.Contains(t, out, "USD -")
	assert.Contains(t, out, "data:image/png;base64,")
	assert.Equal(t, "Ladakh Expedition.html", e.Filename(studio.ExportHTML, testPackage(t)))
}

func TestExporter_UnknownKind(t *testing.T) {
	err := newTestExporter().Export(context.Background(), io.Discard, "gif", testPackage(t), studio.ExportOptions{})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	pkg := &model.TravelPackage{PackageName: "Spiti: Winter/Summer"}
	assert.Equal(t, "Spiti_ Winter_Summer_Flyer.jpg", Filename(pkg, "_Flyer", "jpg"))
	assert.Equal(t, "Itinerary.pdf", Filename(&model.TravelPackage{PackageName: "  "}, "", "pdf"))
	assert.Equal(t, "Itinerary.pdf", Filename(nil, "", "pdf"))
}

func TestLoader_CachesRemoteImages(t *testing.T) {
	data := pngBytes(t, 8, 8)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), 0, zerolog.Nop())
	for range 3 {
		img, err := l.Image(context.Background(), srv.URL+"/cover.png")
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := l.Image(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")

	_, err = l.Image(context.Background(), "ftp://example.com/a.png")
	assert.Error(t, err)
	_, err = l.Image(context.Background(), "data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, View(&buf, studio.Initial()))
	assert.Contains(t, buf.String(), "Upload a .docx, .doc or .txt")

	pkg := testPackage(t)
	buf.Reset()
	require.NoError(t, View(&buf, studio.State{Step: studio.StepEdit, Package: pkg, Error: "Rate limit <exceeded>"}))
	out := buf.String()
	assert.Contains(t, out, "Classic Luxe")
	assert.Contains(t, out, "Rate limit &lt;exceeded&gt;")
	assert.Contains(t, out, "--primary: #1a1a1a")

	buf.Reset()
	staged := &studio.StagedImage{Target: studio.Day(1), URL: "data:image/png;base64,AA=="}
	require.NoError(t, View(&buf, studio.State{Step: studio.StepPreview, Package: pkg, Pending: staged}))
	out = buf.String()
	assert.Contains(t, out, "New image staged for day 1")
	assert.Contains(t, out, "Journey Beyond Boundaries")
	assert.Contains(t, out, "Himalayan Riders")
}

func TestView_RejectsScriptImageSources(t *testing.T) {
	pkg := testPackage(t)
	pkg.LogoURL = "javascript:alert(1)"
	var buf bytes.Buffer
	require.NoError(t, Document(&buf, pkg))
	assert.NotContains(t, buf.String(), "javascript:")
}

func TestCSSVars_FallsBackOnInvalidValues(t *testing.T) {
	st := theme.Preset(model.ThemeWanderlust)
	st.PrimaryColor = "red;}</style>"
	st.HeadingFont = `Evil"Font;`
	vars := string(cssVars(st))
	assert.Contains(t, vars, "--primary: #1a1a1a")
	assert.Contains(t, vars, `--heading-font: "EvilFont"`)
	assert.Contains(t, vars, "--heading-style: italic")
}

func TestDirSink_NoPartialFile(t *testing.T) {
	dir := t.TempDir()
	_, err := DirSink{Dir: dir}.Save("x.pdf", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func exportPDF(t *testing.T, e *Exporter, pkg *model.TravelPackage) Info {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brochure.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, e.PDF(context.Background(), f, pkg, studio.ExportOptions{}))
	require.NoError(t, f.Close())
	info, err := Inspect(path)
	require.NoError(t, err)
	return info
}

func TestExporter_PDF_EmbedsUnicodeFonts(t *testing.T) {
	var logs bytes.Buffer
	e := New(Config{Scale: 0.5, Logger: zerolog.New(&logs)})
	pkg := testPackage(t)
	pkg.Currency = "zł"
	pkg.Pricing[0].Value = "4 500"
	pkg.Itinerary[0].Location = "Leh (लेह)"

	var buf bytes.Buffer
	require.NoError(t, e.PDF(context.Background(), &buf, pkg, studio.ExportOptions{}))
	assert.Contains(t, buf.String(), "/Identity-H")
	assert.Contains(t, buf.String(), "/FontFile2")
	assert.NotContains(t, buf.String(), "/WinAnsiEncoding")

	assert.Contains(t, logs.String(), "cannot draw")
	assert.Contains(t, logs.String(), "लेह")
	assert.NotContains(t, logs.String(), "ł")
}

func TestMissingGlyphs(t *testing.T) {
	assert.Empty(t, missingGlyphs("4 500 zł", "€ 1.200", "Zürich • Kraków ×"))
	assert.Equal(t, []rune("लेह"), missingGlyphs("Leh (लेह)", "लेह"))
}

func TestExporter_PDF_LongListsFlowAcrossPages(t *testing.T) {
	e := newTestExporter()
	short := exportPDF(t, e, testPackage(t))

	pkg := testPackage(t)
	for i := range 60 {
		pkg.Inclusions = append(pkg.Inclusions, fmt.Sprintf("Included item %d with enough words to wrap onto a second line of its column", i))
	}
	pkg.Exclusions = append(pkg.Exclusions, "Personal expenses")
	long := exportPDF(t, e, pkg)
	assert.Greater(t, long.Pages, short.Pages)
}

func TestBrochure_LineCount(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	registerFonts(pdf)
	pdf.SetFont(sansFamily, "", 10)
	b := &brochure{pdf: pdf}

	assert.Equal(t, 1, b.lineCount("Fuel", 80))
	assert.Greater(t, b.lineCount(strings.Repeat("mountain ", 40), 80), 2)
	assert.Equal(t, 1, b.lineCount("anything", 0))
}
