package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/itinerary-architect/internal/ai"
	"github.com/thywilljoshua/itinerary-architect/internal/credentials"
	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

// TextExtractor reads the plain text of an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

type ExportKind string

const (
	ExportPDF  ExportKind = "pdf"
	ExportJPEG ExportKind = "jpeg"
	ExportHTML ExportKind = "html"
)

func ParseExportKind(s string) (ExportKind, error) {
	switch k := ExportKind(strings.ToLower(s)); k {
	case ExportPDF, ExportJPEG, ExportHTML:
		return k, nil
	case "jpg":
		return ExportJPEG, nil
	}
	return "", fmt.Errorf("%w: export kind %q (pdf, jpeg or html)", ErrInvalidValue, s)
}

type ExportOptions struct {
	Landscape bool
}

// Exporter renders a package into a downloadable document.
type Exporter interface {
	Filename(kind ExportKind, pkg *model.TravelPackage) string
	Export(ctx context.Context, w io.Writer, kind ExportKind, pkg *model.TravelPackage, opts ExportOptions) error
}

// Sink stores a download under name and returns where it ended up.
type Sink interface {
	Save(name string, write func(w io.Writer) error) (string, error)
}

// Limits bounds the size of user-supplied images per slot.
type Limits struct {
	Logo  int64
	Cover int64
	Day   int64
}

func DefaultLimits() Limits {
	return Limits{Logo: 2 << 20, Cover: 5 << 20, Day: 5 << 20}
}

func (l Limits) For(t ImageTarget) int64 {
	switch t.Kind {
	case TargetLogo:
		return l.Logo
	case TargetCover:
		return l.Cover
	}
	return l.Day
}

type Deps struct {
	Extractor   TextExtractor
	Structurer  ai.Structurer
	Imager      ai.Imager
	Exporter    Exporter
	Sink        Sink
	Credentials credentials.Hook
	Limits      Limits
	Logger      zerolog.Logger
}

// regenWorkers bounds concurrent image generation in RegenerateMissing.
const regenWorkers = 3

// Controller owns the single application state. Subscribers are notified after every
// commit, under the controller lock, and must not call back into the controller.
type Controller struct {
	deps Deps
	log  zerolog.Logger

	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewController(deps Deps) *Controller {
	if deps.Limits == (Limits{}) {
		deps.Limits = DefaultLimits()
	}
	if deps.Imager == nil {
		deps.Imager = ai.Noop{}
	}
	if deps.Structurer == nil {
		deps.Structurer = ai.Heuristic{}
	}
	return &Controller{
		deps:  deps,
		log:   deps.Logger.With().Str("component", "studio").Logger(),
		state: Initial(),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every committed state.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Controller) commit(a Action) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Reduce(c.state, a)
	if err != nil {
		return c.state, err
	}
	c.state = next
	for _, fn := range slices.Clone(c.subs) {
		fn(next)
	}
	return next, nil
}

// Dispatch applies a synchronous edit.
func (c *Controller) Dispatch(a Action) (State, error) {
	return c.commit(a)
}

func (c *Controller) failed(op string, err error) {
	c.log.Error().Err(err).Str("op", op).Msg("operation failed")
	_, _ = c.commit(fail{Message: Describe(err)})
}

// BeginUpload extracts, structures and normalizes a document and moves to the editor.
func (c *Controller) BeginUpload(ctx context.Context, name string, data []byte) error {
	if _, err := c.commit(startUpload{}); err != nil {
		return err
	}
	log := c.log.With().Str("file", name).Int("bytes", len(data)).Logger()
	log.Info().Msg("upload started")

	text, err := c.deps.Extractor.Extract(ctx, name, data)
	if err != nil {
		c.failed("extract", err)
		return err
	}
	draft, err := c.deps.Structurer.Structure(ctx, text)
	if err != nil {
		c.failedAI(ctx, "structure", err)
		return err
	}
	pkg := draft.Normalize(theme.Preset(model.ThemeLuxe))
	if _, err := c.commit(uploaded{Package: pkg}); err != nil {
		c.failed("upload", err)
		return err
	}
	log.Info().Str("package", pkg.PackageName).Int("days", len(pkg.Itinerary)).Msg("upload structured")
	return nil
}

// RequestImageReplace validates a user-supplied image and either stages it (preview) or
// applies it (editor). Oversize files are rejected before they are read.
func (c *Controller) RequestImageReplace(target ImageTarget, name string, size int64, r io.Reader) error {
	url, err := c.readImage(target, name, size, r)
	if err != nil {
		c.failed("replace image", err)
		return err
	}
	_, err = c.commit(ReplaceImage{Target: target, URL: url})
	return err
}

// readImage enforces the per-target size limit and returns the image as a data URL.
func (c *Controller) readImage(target ImageTarget, name string, size int64, r io.Reader) (string, error) {
	limit := c.deps.Limits.For(target)
	if size > limit {
		return "", fmt.Errorf("%w: %s is %s, the %s limit is %s", ErrImageTooLarge, name, mib(size), target.Kind, mib(limit))
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %s exceeds the %s limit of %s", ErrImageTooLarge, name, target.Kind, mib(limit))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotAnImage, name, mt.String())
	}
	return model.DataURL(mt.String(), data), nil
}

func mib(n int64) string {
	return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
}

func dayRequest(d model.ItineraryDay, prompt string) ai.ImageRequest {
	return ai.ImageRequest{
		Location:     d.Location,
		Title:        d.Title,
		Description:  d.Summary(),
		CustomPrompt: prompt,
	}
}

// failedAI records an adapter failure. An authentication failure also asks the credential
// hook for a new key so the next attempt can succeed.
func (c *Controller) failedAI(ctx context.Context, op string, err error) {
	c.failed(op, err)
	if errors.Is(err, ai.ErrAuth) && c.deps.Credentials != nil {
		if serr := c.deps.Credentials.SelectKey(ctx); serr != nil {
			c.log.Warn().Err(serr).Msg("key selection failed")
		}
	}
}

// SelectKey asks the credential hook for a new API key.
func (c *Controller) SelectKey(ctx context.Context) error {
	if c.deps.Credentials == nil {
		return credentials.ErrNoKey
	}
	if err := c.deps.Credentials.SelectKey(ctx); err != nil {
		return err
	}
	c.log.Info().Msg("api key selected")
	return nil
}

// RegenerateImage generates a new picture for day i and writes it straight into the package.
func (c *Controller) RegenerateImage(ctx context.Context, i int, prompt string) error {
	s := c.State()
	if s.Package == nil {
		return nil
	}
	if i < 0 || i >= len(s.Package.Itinerary) {
		return outOfRange("day", i, len(s.Package.Itinerary))
	}
	credentials.EnsureKey(ctx, c.deps.Credentials)
	if _, err := c.commit(beginLoading{}); err != nil {
		return err
	}

	url, err := c.deps.Imager.GenerateImage(ctx, dayRequest(s.Package.Itinerary[i], prompt))
	if err != nil {
		c.failedAI(ctx, "generate image", err)
		return err
	}
	if _, err := c.commit(regenerated{Day: i, URL: url}); err != nil {
		c.failed("apply image", err)
		return err
	}
	_, _ = c.commit(endLoading{})
	c.log.Info().Int("day", i).Msg("image regenerated")
	return nil
}

// RegenerateMissing generates pictures for every day without one. Each image is committed
// as soon as it arrives. progress, if set, is called after each finished day.
func (c *Controller) RegenerateMissing(ctx context.Context, prompt string, progress func(done, total int)) (int, error) {
	s := c.State()
	if s.Package == nil {
		return 0, nil
	}
	var missing []int
	for i, d := range s.Package.Itinerary {
		if strings.TrimSpace(d.ImageURL) == "" {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	credentials.EnsureKey(ctx, c.deps.Credentials)
	if _, err := c.commit(beginLoading{}); err != nil {
		return 0, err
	}

	var (
		mu   sync.Mutex
		done int
		ok   int
	)
	var g errgroup.Group
	g.SetLimit(regenWorkers)
	for _, i := range missing {
		req := dayRequest(s.Package.Itinerary[i], prompt)
		g.Go(func() error {
			url, err := c.deps.Imager.GenerateImage(ctx, req)
			if err == nil {
				_, err = c.commit(regenerated{Day: i, URL: url, batch: true})
			}
			mu.Lock()
			done++
			if err == nil {
				ok++
			}
			if progress != nil {
				progress(done, len(missing))
			}
			mu.Unlock()
			if err != nil {
				c.log.Warn().Err(err).Int("day", i).Msg("image generation failed")
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.failedAI(ctx, "generate image", err)
		return ok, err
	}
	_, _ = c.commit(endLoading{})
	c.log.Info().Int("generated", ok).Msg("missing images regenerated")
	return ok, nil
}

// Export renders the package and stores it through the sink. It is only available from
// the preview.
func (c *Controller) Export(ctx context.Context, kind ExportKind, opts ExportOptions) (string, error) {
	s, err := c.commit(startExport{})
	if err != nil {
		return "", err
	}
	pkg := s.Package
	name := c.deps.Exporter.Filename(kind, pkg)
	path, err := c.deps.Sink.Save(name, func(w io.Writer) error {
		return c.deps.Exporter.Export(ctx, w, kind, pkg, opts)
	})
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrExportFailure, kind, err)
		c.failed("export", err)
		return "", err
	}
	_, _ = c.commit(endLoading{})
	c.log.Info().Str("kind", string(kind)).Str("path", path).Msg("exported")
	return path, nil
}
