package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/itinerary-architect/internal/ai"
	"github.com/thywilljoshua/itinerary-architect/internal/credentials"
	"github.com/thywilljoshua/itinerary-architect/internal/extract"
	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

type fakeStructurer struct {
	draft model.Draft
	err   error
	calls int
	text  string
}

func (f *fakeStructurer) Structure(ctx context.Context, text string) (model.Draft, error) {
	f.calls++
	f.text = text
	return f.draft, f.err
}

type fakeImager struct {
	mu    sync.Mutex
	err   error
	fail  map[string]error
	reqs  []ai.ImageRequest
	loads []bool
	ctrl  *Controller
}

func (f *fakeImager) GenerateImage(ctx context.Context, req ai.ImageRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.ctrl != nil {
		f.loads = append(f.loads, f.ctrl.State().IsLoading)
	}
	if err := f.fail[req.Title]; err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64," + req.Title, nil
}

type fakeHook struct {
	has      bool
	selected int
}

func (h *fakeHook) HasSelectedKey(ctx context.Context) bool { return h.has }

func (h *fakeHook) SelectKey(ctx context.Context) error {
	h.selected++
	return nil
}

type fakeExporter struct {
	err  error
	opts ExportOptions
}

func (f *fakeExporter) Filename(kind ExportKind, pkg *model.TravelPackage) string {
	return pkg.PackageName + "." + string(kind)
}

func (f *fakeExporter) Export(ctx context.Context, w io.Writer, kind ExportKind, pkg *model.TravelPackage, opts ExportOptions) error {
	f.opts = opts
	if f.err != nil {
		return f.err
	}
	_, err := fmt.Fprintf(w, "%s:%s", kind, pkg.PackageName)
	return err
}

type memSink struct {
	files map[string]string
}

func (m *memSink) Save(name string, write func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[name] = buf.String()
	return "/out/" + name, nil
}

type fixture struct {
	ctrl       *Controller
	structurer *fakeStructurer
	imager     *fakeImager
	hook       *fakeHook
	exporter   *fakeExporter
	sink       *memSink
}

func newFixture() *fixture {
	f := &fixture{
		structurer: &fakeStructurer{},
		imager:     &fakeImager{},
		hook:       &fakeHook{has: true},
		exporter:   &fakeExporter{},
		sink:       &memSink{},
	}
	f.ctrl = NewController(Deps{
		Extractor:   extract.New(extract.Config{Logger: zerolog.Nop()}),
		Structurer:  f.structurer,
		Imager:      f.imager,
		Exporter:    f.exporter,
		Sink:        f.sink,
		Credentials: f.hook,
		Logger:      zerolog.Nop(),
	})
	f.imager.ctrl = f.ctrl
	return f
}

func (f *fixture) withPackage(t *testing.T, step Step) {
	t.Helper()
	p := samplePackage()
	_, err := f.ctrl.commit(uploaded{Package: *p})
	require.NoError(t, err)
	if step == StepPreview {
		_, err = f.ctrl.Dispatch(ShowPreview{})
		require.NoError(t, err)
	}
}

func TestController_UploadStructuresDocument(t *testing.T) {
	f := newFixture()
	f.structurer.draft = model.Draft{
		PackageName: "Ladakh Expedition",
		Itinerary: []model.ItineraryDay{
			{Day: 1, Title: "Arrival", Location: "Leh", Activities: []string{"Arrive in Ladakh", "Acclimatize"}},
		},
	}
	var seen []State
	f.ctrl.Subscribe(func(s State) { seen = append(seen, s) })

	err := f.ctrl.BeginUpload(context.Background(), "ladakh.txt", []byte("Day 1: Arrive in Ladakh. Acclimatize."))
	require.NoError(t, err)

	s := f.ctrl.State()
	assert.Equal(t, StepEdit, s.Step)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
	require.NotNil(t, s.Package)
	assert.Equal(t, "Ladakh Expedition", s.Package.PackageName)
	assert.Equal(t, model.DefaultDestination, s.Package.Destination)
	assert.Equal(t, model.DefaultCurrency, s.Package.Currency)
	assert.Equal(t, model.ThemeLuxe, s.Package.Theme)
	assert.Equal(t, []string{"Arrive in Ladakh", "Acclimatize"}, s.Package.Itinerary[0].Activities)
	assert.Equal(t, "Day 1: Arrive in Ladakh. Acclimatize.", f.structurer.text)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsLoading)
	assert.False(t, seen[1].IsLoading)
}

func TestController_UploadUnsupportedFormat(t *testing.T) {
	f := newFixture()
	err := f.ctrl.BeginUpload(context.Background(), "itinerary.pdf", []byte("%PDF-1.4"))
	require.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	s := f.ctrl.State()
	assert.Equal(t, 0, f.structurer.calls)
	assert.Equal(t, StepUpload, s.Step)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "Please upload a .docx, .doc, or .txt file.", s.Error)
}

func TestController_UploadRateLimited(t *testing.T) {
	f := newFixture()
	f.structurer.err = fmt.Errorf("%w: 429 RESOURCE_EXHAUSTED", ai.ErrRateLimited)

	err := f.ctrl.BeginUpload(context.Background(), "trip.docx.txt", []byte("Day 1: Leh"))
	require.ErrorIs(t, err, ai.ErrRateLimited)

	s := f.ctrl.State()
	assert.Equal(t, StepUpload, s.Step)
	assert.Nil(t, s.Package)
	assert.False(t, s.IsLoading)
	assert.Contains(t, s.Error, "Rate limit exceeded")

	_, err = f.ctrl.Dispatch(DismissError{})
	require.NoError(t, err)
	assert.Empty(t, f.ctrl.State().Error)
}

func TestController_UploadAuthFailureAsksForKey(t *testing.T) {
	f := newFixture()
	f.structurer.err = fmt.Errorf("%w: 403 PERMISSION_DENIED", ai.ErrAuth)

	err := f.ctrl.BeginUpload(context.Background(), "a.txt", []byte("Day 1: Leh"))
	require.ErrorIs(t, err, ai.ErrAuth)

	s := f.ctrl.State()
	assert.Equal(t, 1, f.hook.selected)
	assert.Equal(t, StepUpload, s.Step)
	assert.Contains(t, s.Error, "API Key authentication failed")
	assert.False(t, s.IsLoading)

	f.structurer.err = nil
	_, err = f.ctrl.Dispatch(DismissError{})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.BeginUpload(context.Background(), "a.txt", []byte("Day 1: Leh")))
	assert.Equal(t, StepEdit, f.ctrl.State().Step)
}

func TestController_UploadOtherFailuresKeepKey(t *testing.T) {
	f := newFixture()
	f.structurer.err = fmt.Errorf("%w: bad json", ai.ErrMalformedOutput)
	require.Error(t, f.ctrl.BeginUpload(context.Background(), "a.txt", []byte("Day 1: Leh")))
	assert.Equal(t, 0, f.hook.selected)
}

func TestController_SelectKey(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.SelectKey(context.Background()))
	assert.Equal(t, 1, f.hook.selected)

	bare := NewController(Deps{Logger: zerolog.Nop()})
	assert.ErrorIs(t, bare.SelectKey(context.Background()), credentials.ErrNoKey)
}

func TestController_UploadOnlyOnUploadStep(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	err := f.ctrl.BeginUpload(context.Background(), "a.txt", []byte("Day 1"))
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, 0, f.structurer.calls)
	assert.Equal(t, StepEdit, f.ctrl.State().Step)
}

func TestController_StartOverKeepsPackageUntilReplaced(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	_, err := f.ctrl.Dispatch(StartOver{})
	require.NoError(t, err)
	assert.Equal(t, "Ladakh Expedition", f.ctrl.State().Package.PackageName)

	f.structurer.draft = model.Draft{PackageName: "Spiti Valley"}
	require.NoError(t, f.ctrl.BeginUpload(context.Background(), "spiti.txt", []byte("Spiti")))
	assert.Equal(t, "Spiti Valley", f.ctrl.State().Package.PackageName)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestController_RequestImageReplace(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepPreview)

	err := f.ctrl.RequestImageReplace(Logo(), "logo.png", 3<<20, strings.NewReader("unread"))
	require.ErrorIs(t, err, ErrImageTooLarge)
	assert.Nil(t, f.ctrl.State().Pending)
	assert.Contains(t, f.ctrl.State().Error, "Image is too large.")

	err = f.ctrl.RequestImageReplace(Cover(), "notes.txt", 5, strings.NewReader("hello"))
	require.ErrorIs(t, err, ErrNotAnImage)
	assert.Equal(t, "The selected file is not an image.", f.ctrl.State().Error)

	err = f.ctrl.RequestImageReplace(Day(0), "day.png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	s := f.ctrl.State()
	require.NotNil(t, s.Pending)
	assert.Equal(t, Day(0), s.Pending.Target)
	assert.True(t, strings.HasPrefix(s.Pending.URL, "data:image/png;base64,"))
	assert.Empty(t, s.Package.Itinerary[0].ImageURL)

	_, err = f.ctrl.Dispatch(ConfirmStagedImage{})
	require.NoError(t, err)
	assert.Equal(t, s.Pending.URL, f.ctrl.State().Package.Itinerary[0].ImageURL)
}

func TestController_RequestImageReplace_UnderstatedSize(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	big := append(append([]byte{}, pngHeader...), make([]byte, 2<<20)...)
	err := f.ctrl.RequestImageReplace(Logo(), "logo.png", 10, bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Empty(t, f.ctrl.State().Package.LogoURL)
}

func TestController_RegenerateImage(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	f.hook.has = false
	_, err := f.ctrl.Dispatch(OpenRegen{Day: 0})
	require.NoError(t, err)

	require.NoError(t, f.ctrl.RegenerateImage(context.Background(), 0, "golden hour"))

	s := f.ctrl.State()
	assert.Equal(t, "data:image/png;base64,Arrival", s.Package.Itinerary[0].ImageURL)
	assert.Nil(t, s.Regen)
	assert.False(t, s.IsLoading)
	assert.Equal(t, 1, f.hook.selected, "missing key prompts before the call")

	require.Len(t, f.imager.reqs, 1)
	assert.Equal(t, ai.ImageRequest{
		Location:     "Leh",
		Title:        "Arrival",
		Description:  "Arrive. Acclimatize",
		CustomPrompt: "golden hour",
	}, f.imager.reqs[0])
	assert.Equal(t, []bool{true}, f.imager.loads)
}

func TestController_RegenerateImage_AuthFailure(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepPreview)
	f.imager.err = fmt.Errorf("%w: 403 PERMISSION_DENIED", ai.ErrAuth)

	err := f.ctrl.RegenerateImage(context.Background(), 1, "")
	require.ErrorIs(t, err, ai.ErrAuth)

	s := f.ctrl.State()
	assert.Equal(t, 1, f.hook.selected)
	assert.Contains(t, s.Error, "API Key")
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Package.Itinerary[1].ImageURL)
	assert.Equal(t, StepPreview, s.Step)
}

func TestController_RegenerateImage_OutOfRange(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	assert.ErrorIs(t, f.ctrl.RegenerateImage(context.Background(), 3, ""), ErrIndexOutOfRange)
	assert.Empty(t, f.imager.reqs)
}

func TestController_RegenerateMissing(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	_, err := f.ctrl.Dispatch(ApplyImage{Target: Day(1), URL: "https://example.com/nubra.jpg"})
	require.NoError(t, err)

	var mu sync.Mutex
	var progress []int
	n, err := f.ctrl.RegenerateMissing(context.Background(), "", func(done, total int) {
		mu.Lock()
		progress = append(progress, done)
		mu.Unlock()
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []int{1, 2}, progress)

	s := f.ctrl.State()
	assert.Equal(t, "data:image/png;base64,Arrival", s.Package.Itinerary[0].ImageURL)
	assert.Equal(t, "https://example.com/nubra.jpg", s.Package.Itinerary[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,Pangong", s.Package.Itinerary[2].ImageURL)
	assert.False(t, s.IsLoading)
}

func TestController_RegenerateMissing_PartialFailure(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)
	f.imager.fail = map[string]error{"Khardung La": fmt.Errorf("%w: blocked", ai.ErrContentFiltered)}

	n, err := f.ctrl.RegenerateMissing(context.Background(), "", nil)
	require.ErrorIs(t, err, ai.ErrContentFiltered)
	assert.Equal(t, 2, n)

	s := f.ctrl.State()
	assert.NotEmpty(t, s.Package.Itinerary[0].ImageURL)
	assert.Empty(t, s.Package.Itinerary[1].ImageURL)
	assert.NotEmpty(t, s.Package.Itinerary[2].ImageURL)
	assert.Contains(t, s.Error, "safety filters")
	assert.False(t, s.IsLoading)
}

func TestController_Export(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepEdit)

	_, err := f.ctrl.Export(context.Background(), ExportPDF, ExportOptions{})
	require.ErrorIs(t, err, ErrWrongStep)
	assert.Empty(t, f.sink.files)

	_, err = f.ctrl.Dispatch(ShowPreview{})
	require.NoError(t, err)
	path, err := f.ctrl.Export(context.Background(), ExportPDF, ExportOptions{Landscape: true})
	require.NoError(t, err)
	assert.Equal(t, "/out/Ladakh Expedition.pdf", path)
	assert.Equal(t, "pdf:Ladakh Expedition", f.sink.files["Ladakh Expedition.pdf"])
	assert.True(t, f.exporter.opts.Landscape)
	assert.False(t, f.ctrl.State().IsLoading)
}

func TestController_ExportFailure(t *testing.T) {
	f := newFixture()
	f.withPackage(t, StepPreview)
	f.exporter.err = errors.New("canvas tainted")

	_, err := f.ctrl.Export(context.Background(), ExportJPEG, ExportOptions{})
	require.ErrorIs(t, err, ErrExportFailure)

	s := f.ctrl.State()
	assert.Equal(t, "Export failed. Please try again.", s.Error)
	assert.False(t, s.IsLoading)
	assert.Equal(t, StepPreview, s.Step)
}

func TestParseExportKind(t *testing.T) {
	k, err := ParseExportKind("JPG")
	require.NoError(t, err)
	assert.Equal(t, ExportJPEG, k)
	_, err = ParseExportKind("png")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Contains(t, Describe(fmt.Errorf("wrap: %w", extract.ErrEmptyDocument)), "empty")
	assert.Contains(t, Describe(fmt.Errorf("%w: x", ai.ErrNoImageReturned)), "No image was generated")
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
