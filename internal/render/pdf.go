package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

const (
	pageMargin = 20.0
	coverInset = 24.0
	mmPerInch  = 25.4
	screenDPI  = 96.0
)

var (
	zinc900 = color.RGBA{R: 0x18, G: 0x18, B: 0x1b, A: 0xff}
	zinc100 = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf5, A: 0xff}
	zinc400 = color.RGBA{R: 0xa1, G: 0xa1, B: 0xaa, A: 0xff}
	white   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Brochure text is set in the Go fonts, embedded as UTF-8. Serif themes use the medium cut.
const (
	sansFamily  = "go"
	serifFamily = "gomedium"
)

func registerFonts(pdf *gofpdf.Fpdf) {
	for _, f := range []struct {
		family, style string
		ttf           []byte
	}{
		{sansFamily, "", goregular.TTF},
		{sansFamily, "B", gobold.TTF},
		{sansFamily, "I", goitalic.TTF},
		{sansFamily, "BI", gobolditalic.TTF},
		{serifFamily, "", gomedium.TTF},
		{serifFamily, "B", gobold.TTF},
		{serifFamily, "I", gomediumitalic.TTF},
		{serifFamily, "BI", gobolditalic.TTF},
	} {
		pdf.AddUTF8FontFromBytes(f.family, f.style, f.ttf)
	}
}

// missingGlyphs lists the runes of texts that the embedded fonts cannot draw.
func missingGlyphs(texts ...string) []rune {
	if loadFonts() != nil {
		return nil
	}
	var (
		buf sfnt.Buffer
		out []rune
	)
	for _, s := range texts {
		for _, r := range s {
			if unicode.IsSpace(r) || slices.Contains(out, r) {
				continue
			}
			if gi, err := regular.GlyphIndex(&buf, r); err == nil && gi == 0 {
				out = append(out, r)
			}
		}
	}
	return out
}

// packageText collects every user-entered string that ends up in the brochure.
func packageText(p *model.TravelPackage) []string {
	out := []string{p.PackageName, p.Destination, p.Duration, p.Currency, p.CompanyName}
	for _, r := range p.Pricing {
		out = append(out, r.Label, r.Value)
	}
	out = append(out, p.Inclusions...)
	out = append(out, p.Exclusions...)
	for _, d := range p.Itinerary {
		out = append(out, d.Title, d.Location, d.Description)
		out = append(out, d.Activities...)
	}
	return out
}

// face is a registered font family and gofpdf style string.
type face struct {
	family string
	style  string
}

func themedFace(family, weight string, style model.FontStyle) face {
	f := face{family: sansFamily}
	if theme.IsSerif(family) {
		f.family = serifFamily
	}
	if w, err := strconv.Atoi(weight); err == nil && w >= 600 {
		f.style += "B"
	}
	if style == model.FontItalic {
		f.style += "I"
	}
	return f
}

// brochure carries the state of one PDF rendering.
type brochure struct {
	e     *Exporter
	ctx   context.Context
	pkg   *model.TravelPackage
	pdf   *gofpdf.Fpdf
	w, h  float64
	head  face
	body  face
	prim  color.RGBA
	acc   color.RGBA
	bg    color.RGBA
	image int
}

// PDF writes the paginated brochure: a full-bleed cover followed by the intro, the itinerary,
// pricing, inclusions and exclusions, and the footer.
func (e *Exporter) PDF(ctx context.Context, w io.Writer, pkg *model.TravelPackage, opts studio.ExportOptions) error {
	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(pkg.PackageName, true)
	pdf.SetAuthor(companyOrDefault(pkg), true)
	pdf.SetCreator("itinerary-architect", true)
	registerFonts(pdf)
	if missing := missingGlyphs(packageText(pkg)...); len(missing) > 0 {
		e.log.Warn().Str("package", pkg.PackageName).Str("runes", string(missing)).
			Msg("brochure text has characters the PDF fonts cannot draw")
	}

	st := pkg.Styles
	b := &brochure{
		e:    e,
		ctx:  ctx,
		pkg:  pkg,
		pdf:  pdf,
		head: themedFace(st.HeadingFont, st.HeadingWeight, st.HeadingStyle),
		body: themedFace(st.BodyFont, st.BodyWeight, st.BodyStyle),
		prim: parseHex(st.PrimaryColor, zinc900),
		acc:  parseHex(st.AccentColor, zinc400),
		bg:   parseHex(st.BackgroundColor, white),
	}
	b.w, b.h = pdf.GetPageSize()

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		b.fill(b.bg)
		pdf.Rect(0, 0, b.w, b.h, "F")
		pdf.SetXY(pageMargin, pageMargin)
	})

	b.cover()
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	b.intro()
	for i := range pkg.Itinerary {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.day(pkg.Itinerary[i])
	}
	b.pricing()
	b.lists()
	b.footer()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func (b *brochure) fill(c color.RGBA) { b.pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func (b *brochure) ink(c color.RGBA)  { b.pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
func (b *brochure) draw(c color.RGBA) { b.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }

func (b *brochure) font(f face, size float64) {
	b.pdf.SetFont(f.family, f.style, size)
}

func (b *brochure) text(w, h float64, s, align string) {
	b.pdf.MultiCell(w, h, s, "", align, false)
}

// placeImage registers src scaled to cover a w×h mm box and draws it at x, y. It reports
// whether the image could be loaded.
func (b *brochure) placeImage(src string, x, y, w, h float64, fill bool) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	img, err := b.e.images.Image(b.ctx, src)
	if err != nil {
		b.e.log.Warn().Err(err).Msg("image skipped")
		return false
	}
	if fill {
		img = imaging.Fill(img, b.px(w), b.px(h), imaging.Center, imaging.Lanczos)
	} else {
		img = imaging.Fit(img, b.px(w), b.px(h), imaging.Lanczos)
		bounds := img.Bounds()
		w = float64(bounds.Dx()) / float64(b.px(w)) * w
		h = float64(bounds.Dy()) / float64(b.px(h)) * h
	}
	data, err := encodeJPEG(img)
	if err != nil {
		b.e.log.Warn().Err(err).Msg("image skipped")
		return false
	}
	b.image++
	name := "img" + strconv.Itoa(b.image)
	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	b.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return true
}

// px converts printed millimetres to pixels at the configured scale.
func (b *brochure) px(mm float64) int {
	n := int(mm / mmPerInch * screenDPI * b.e.scale)
	return max(n, 1)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(100)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *brochure) cover() {
	pdf, p := b.pdf, b.pkg
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if !b.placeImage(p.CoverImage(), 0, 0, b.w, b.h, true) {
		b.fill(zinc900)
		pdf.Rect(0, 0, b.w, b.h, "F")
	}
	pdf.SetAlpha(overlayAlpha(p.Theme), "Normal")
	pdf.SetFillColor(0, 0, 0)
	pdf.Rect(0, 0, b.w, b.h, "F")
	pdf.SetAlpha(1, "Normal")

	if !b.placeImage(p.LogoURL, coverInset, coverInset, 40, 16, false) {
		b.draw(white)
		pdf.SetLineWidth(0.5)
		pdf.Circle(coverInset+6, coverInset+6, 6, "D")
	}
	b.ink(white)
	pdf.SetFont(sansFamily, "B", 10)
	pdf.SetXY(b.w/2, coverInset+3)
	pdf.CellFormat(b.w/2-coverInset, 6, strings.ToUpper(p.CompanyName), "", 0, "R", false, 0, "")

	inner := b.w - 2*coverInset
	pdf.SetXY(coverInset, b.h-coverInset-95)
	b.font(face{family: b.head.family, style: "B"}, 40)
	b.text(inner, 16, strings.ToUpper(p.PackageName), "L")

	y := max(pdf.GetY()+6, b.h-coverInset-50)
	b.fill(white)
	pdf.Rect(coverInset, y, 24, 1, "F")
	y += 12

	col := inner / 2
	for i, pair := range [][2]string{{"DESTINATION", p.Destination}, {"DURATION", p.Duration}} {
		x := coverInset + float64(i)*col
		pdf.SetXY(x, y)
		pdf.SetFont(sansFamily, "", 8)
		pdf.SetTextColor(220, 220, 220)
		pdf.CellFormat(col, 5, pair[0], "", 2, "L", false, 0, "")
		b.ink(white)
		b.font(face{family: b.body.family}, 20)
		pdf.SetX(x)
		pdf.MultiCell(col-8, 9, pair[1], "", "L", false)
	}
}

func (b *brochure) intro() {
	pdf := b.pdf
	pdf.Ln(20)
	b.ink(b.prim)
	b.font(face{family: b.head.family, style: "I"}, 28)
	b.text(0, 14, introTitle, "C")
	pdf.Ln(6)
	b.ink(b.prim)
	b.font(b.body, 13)
	b.text(0, 7, introText, "C")
	pdf.Ln(20)
}

func (b *brochure) ensure(space float64) {
	_, _, _, bottom := b.pdf.GetMargins()
	if b.pdf.GetY()+space > b.h-bottom {
		b.pdf.AddPage()
	}
}

func (b *brochure) day(d model.ItineraryDay) {
	pdf := b.pdf
	contentW := b.w - 2*pageMargin
	imgH := min(contentW*9/16, b.h/2)

	b.ensure(30 + imgH)
	b.ink(b.acc)
	pdf.SetFont(sansFamily, "B", 9)
	pdf.CellFormat(0, 6, strings.ToUpper(dayLabel(d.Day)), "", 1, "L", false, 0, "")
	b.ink(b.prim)
	b.font(b.head, 26)
	b.text(0, 12, d.Title, "L")
	pdf.Ln(4)

	y := pdf.GetY()
	if !b.placeImage(d.ImageURL, pageMargin, y, contentW, imgH, true) {
		b.fill(zinc100)
		pdf.Rect(pageMargin, y, contentW, imgH, "F")
		b.ink(zinc400)
		pdf.SetFont(sansFamily, "", 10)
		pdf.SetXY(pageMargin, y+imgH/2-3)
		pdf.CellFormat(contentW, 6, "NO IMAGE SELECTED", "", 0, "C", false, 0, "")
	}
	pdf.SetXY(pageMargin, y+imgH+6)

	if loc := strings.TrimSpace(d.Location); loc != "" {
		b.draw(zinc400)
		pdf.SetLineWidth(0.2)
		pdf.Line(pageMargin, pdf.GetY()+3, pageMargin+5, pdf.GetY()+3)
		b.ink(zinc400)
		pdf.SetFont(sansFamily, "B", 8)
		pdf.SetX(pageMargin + 8)
		pdf.CellFormat(0, 6, strings.ToUpper(loc), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	b.ink(b.prim)
	for _, act := range d.Activities {
		b.font(b.body, 12)
		pdf.SetX(pageMargin)
		pdf.CellFormat(6, 7, "•", "", 0, "L", false, 0, "")
		pdf.MultiCell(contentW-6, 7, act, "", "L", false)
		pdf.Ln(1)
	}
	if desc := strings.TrimSpace(d.Description); desc != "" {
		pdf.Ln(3)
		b.ink(zinc400)
		b.font(face{family: b.body.family, style: "I"}, 11)
		pdf.SetX(pageMargin + 6)
		pdf.MultiCell(contentW-6, 6, desc, "", "J", false)
	}
	pdf.Ln(16)
}

func (b *brochure) pricing() {
	pdf, p := b.pdf, b.pkg
	b.ensure(40 + 12*float64(len(p.Pricing)))
	pdf.Ln(8)
	b.ink(b.prim)
	b.font(face{family: b.head.family, style: "I"}, 24)
	b.text(0, 12, pricingHead, "L")
	b.draw(b.prim)
	pdf.SetLineWidth(0.3)
	pdf.Line(pageMargin, pdf.GetY()+1, b.w-pageMargin, pdf.GetY()+1)
	pdf.Ln(8)

	b.draw(zinc100)
	for _, r := range p.Pricing {
		b.ink(zinc400)
		pdf.SetFont(sansFamily, "B", 8)
		pdf.CellFormat((b.w-2*pageMargin)/2, 10, strings.ToUpper(r.Label), "B", 0, "L", false, 0, "")
		b.ink(b.prim)
		b.font(face{family: b.body.family}, 16)
		pdf.CellFormat(0, 10, priceValue(p, r), "B", 1, "R", false, 0, "")
		pdf.Ln(2)
	}
	pdf.Ln(12)
}

type listColumn struct {
	title  string
	mark   string
	items  []string
	colour color.RGBA
}

// lists renders inclusions and exclusions side by side, one row at a time, so a page break
// moves both columns together.
func (b *brochure) lists() {
	pdf, p := b.pdf, b.pkg
	const lineH = 6.0
	gap := 10.0
	col := (b.w - 2*pageMargin - gap) / 2
	cols := []listColumn{
		{"INCLUSIONS", "/", p.Inclusions, b.prim},
		{"EXCLUSIONS", "×", p.Exclusions, zinc400},
	}
	x := func(i int) float64 { return pageMargin + float64(i)*(col+gap) }

	b.ensure(24 + lineH*float64(min(max(len(p.Inclusions), len(p.Exclusions)), 10)))
	top := pdf.GetY()
	b.ink(zinc400)
	pdf.SetFont(sansFamily, "B", 8)
	for i, c := range cols {
		pdf.SetXY(x(i), top)
		pdf.CellFormat(col, lineH, c.title, "B", 0, "L", false, 0, "")
	}
	pdf.SetY(top + lineH + 4)

	b.font(face{family: b.body.family}, 10)
	for row := 0; row < max(len(p.Inclusions), len(p.Exclusions)); row++ {
		lines := 1
		for _, c := range cols {
			if row < len(c.items) {
				lines = max(lines, b.lineCount(c.items[row], col-5))
			}
		}
		b.ensure(float64(lines) * lineH)
		y, bottom := pdf.GetY(), pdf.GetY()
		for i, c := range cols {
			if row >= len(c.items) {
				continue
			}
			pdf.SetXY(x(i), y)
			b.ink(zinc400)
			pdf.CellFormat(5, lineH, c.mark, "", 0, "L", false, 0, "")
			b.ink(c.colour)
			pdf.MultiCell(col-5, lineH, c.items[row], "", "L", false)
			bottom = max(bottom, pdf.GetY())
		}
		pdf.SetY(bottom)
	}
	pdf.Ln(16)
}

// lineCount estimates how many lines MultiCell needs for s in a cell of width w.
func (b *brochure) lineCount(s string, w float64) int {
	avail := w - 2*b.pdf.GetCellMargin()
	if avail <= 0 {
		return 1
	}
	return max(1, int(b.pdf.GetStringWidth(s)/avail)+1)
}

func (b *brochure) footer() {
	pdf := b.pdf
	b.ensure(30)
	b.draw(zinc100)
	pdf.Line(pageMargin, pdf.GetY(), b.w-pageMargin, pdf.GetY())
	pdf.Ln(12)
	b.ink(b.prim)
	pdf.SetFont(serifFamily, "I", 22)
	b.text(0, 10, companyOrDefault(b.pkg), "C")
	b.ink(zinc400)
	pdf.SetFont(sansFamily, "B", 6)
	b.text(0, 6, strings.ToUpper(footerLine), "C")
}
