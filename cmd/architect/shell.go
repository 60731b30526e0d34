package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-shellwords"
	"github.com/schollz/progressbar/v3"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/render"
	"github.com/thywilljoshua/itinerary-architect/internal/studio"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

var errQuit = errors.New("quit")

const usage = `Commands:
  upload <file>                          structure a .docx, .doc or .txt itinerary
  show | json                            print the package
  view [file]                            write the current screen as HTML
  set <field> <value>                    packageName destination duration currency companyName
                                         logoUrl coverImageUrl contactDetails terms
  day add | day remove <i>               add or remove a day
  day <i> <field> <value>                day title location description imageUrl
  activity add <day>                     append a pointer
  activity set <day> <i> <text>          edit a pointer
  activity remove <day> <i>              remove a pointer
  price add | price remove <i>           add or remove a pricing row
  price set <i> label|value <text>       edit a pricing row
  list inclusions|exclusions add | set <i> <text> | remove <i>
  theme luxe|vanguard|wanderlust         switch theme and reset styles
  style <field> <value>                  primaryColor accentColor backgroundColor headingFont
                                         headingWeight headingStyle bodyFont bodyWeight bodyStyle
  themes | fonts                         list themes or preset fonts
  preview | edit | start-over            move between steps
  image cover|logo|<day> <file>          replace an image (staged while previewing)
  image confirm | image cancel           resolve a staged image
  regen <day> [prompt]                   generate a day image
  regen all [prompt]                     generate every missing day image
  export pdf|jpeg|html [landscape]       export from the preview
  dismiss                                clear the error banner
  key                                    enter a new API key
  help | quit`

// shell runs studio commands against a controller.
type shell struct {
	ctrl   *studio.Controller
	out    io.Writer
	outDir string
	bars   bool
}

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

func (s *shell) exec(ctx context.Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.out, usage)
		return nil
	case "quit", "exit":
		return errQuit
	case "upload":
		return s.upload(ctx, args)
	case "show":
		return s.show()
	case "json":
		return s.json()
	case "view":
		return s.view(args)
	case "set":
		return s.set(args)
	case "day":
		return s.day(args)
	case "activity":
		return s.activity(args)
	case "price":
		return s.price(args)
	case "list":
		return s.list(args)
	case "theme":
		if err := need(args, 1, "theme <name>"); err != nil {
			return err
		}
		t, err := model.ParseTheme(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
		}
		return s.dispatch(studio.SetTheme{Theme: t})
	case "style":
		if err := need(args, 2, "style <field> <value>"); err != nil {
			return err
		}
		f, err := model.ParseStyleField(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
		}
		return s.dispatch(studio.SetStyleField{Field: f, Value: strings.Join(args[1:], " ")})
	case "themes":
		for _, t := range model.Themes {
			fmt.Fprintf(s.out, "%-11s %s\n", t, theme.Name(t))
		}
		return nil
	case "fonts":
		fmt.Fprintln(s.out, strings.Join(theme.Fonts(), "\n"))
		return nil
	case "preview":
		return s.dispatch(studio.ShowPreview{})
	case "edit":
		return s.dispatch(studio.BackToEditor{})
	case "start-over":
		return s.dispatch(studio.StartOver{})
	case "dismiss":
		return s.dispatch(studio.DismissError{})
	case "key":
		if err := s.ctrl.SelectKey(ctx); err != nil {
			return err
		}
		okColor.Fprintln(s.out, "API key updated")
		return nil
	case "image":
		return s.image(args)
	case "regen":
		return s.regen(ctx, args)
	case "export":
		return s.export(ctx, args)
	}
	return fmt.Errorf("%w: unknown command %q (try help)", studio.ErrInvalidValue, cmd)
}

func need(args []string, n int, form string) error {
	if len(args) < n {
		return fmt.Errorf("%w: usage: %s", studio.ErrInvalidValue, form)
	}
	return nil
}

func index(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", studio.ErrInvalidValue, s)
	}
	return i, nil
}

// indexes parses the leading n arguments as integers.
func indexes(args []string, n int) ([]int, error) {
	out := make([]int, n)
	for i := range n {
		v, err := index(args[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *shell) dispatch(a studio.Action) error {
	_, err := s.ctrl.Dispatch(a)
	return err
}

func (s *shell) requirePackage() (*model.TravelPackage, error) {
	p := s.ctrl.State().Package
	if p == nil {
		return nil, fmt.Errorf("%w: upload a document first", studio.ErrWrongStep)
	}
	return p, nil
}

func (s *shell) upload(ctx context.Context, args []string) error {
	if err := need(args, 1, "upload <file>"); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := s.ctrl.BeginUpload(ctx, filepath.Base(args[0]), data); err != nil {
		return err
	}
	p := s.ctrl.State().Package
	okColor.Fprintf(s.out, "Structured %q: %d days\n", p.PackageName, len(p.Itinerary))
	return nil
}

func (s *shell) show() error {
	p, err := s.requirePackage()
	if err != nil {
		return err
	}
	st := s.ctrl.State()
	infoColor.Fprintf(s.out, "%s  [%s, %s]\n", p.PackageName, st.Step, theme.Name(p.Theme))
	fmt.Fprintf(s.out, "%s | %s | %s\n", p.Destination, p.Duration, p.Currency)
	for i, d := range p.Itinerary {
		img := "no image"
		if d.ImageURL != "" {
			img = "image"
		}
		fmt.Fprintf(s.out, "[%d] Day %02d %s (%s, %s)\n", i, d.Day, d.Title, d.Location, img)
		for j, a := range d.Activities {
			fmt.Fprintf(s.out, "      %d. %s\n", j, a)
		}
	}
	for i, r := range p.Pricing {
		fmt.Fprintf(s.out, "price[%d] %s: %s\n", i, r.Label, r.Value)
	}
	if st.Pending != nil {
		infoColor.Fprintf(s.out, "staged image for %s: confirm or cancel\n", st.Pending.Target)
	}
	return nil
}

func (s *shell) json() error {
	p, err := s.requirePackage()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(b))
	return nil
}

func (s *shell) view(args []string) error {
	path := filepath.Join(s.outDir, "view.html")
	if len(args) > 0 {
		path = args[0]
	}
	name, dir := filepath.Base(path), filepath.Dir(path)
	saved, err := render.DirSink{Dir: dir}.Save(name, func(w io.Writer) error {
		return render.View(w, s.ctrl.State())
	})
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "View written to %s\n", saved)
	return nil
}

func (s *shell) set(args []string) error {
	if err := need(args, 2, "set <field> <value>"); err != nil {
		return err
	}
	f, err := model.ParseField(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
	}
	return s.dispatch(studio.SetField{Field: f, Value: strings.Join(args[1:], " ")})
}

func (s *shell) day(args []string) error {
	if err := need(args, 1, "day add | day remove <i> | day <i> <field> <value>"); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		return s.dispatch(studio.AddDay{})
	case "remove":
		if err := need(args, 2, "day remove <i>"); err != nil {
			return err
		}
		i, err := index(args[1])
		if err != nil {
			return err
		}
		return s.dispatch(studio.RemoveDay{Day: i})
	}
	if err := need(args, 3, "day <i> <field> <value>"); err != nil {
		return err
	}
	i, err := index(args[0])
	if err != nil {
		return err
	}
	f, err := model.ParseDayField(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
	}
	return s.dispatch(studio.SetDayField{Day: i, Field: f, Value: strings.Join(args[2:], " ")})
}

func (s *shell) activity(args []string) error {
	if err := need(args, 2, "activity add|set|remove <day> ..."); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		d, err := index(args[1])
		if err != nil {
			return err
		}
		return s.dispatch(studio.AddActivity{Day: d})
	case "set":
		if err := need(args, 4, "activity set <day> <i> <text>"); err != nil {
			return err
		}
		ix, err := indexes(args[1:], 2)
		if err != nil {
			return err
		}
		return s.dispatch(studio.SetActivity{Day: ix[0], Index: ix[1], Value: strings.Join(args[3:], " ")})
	case "remove":
		if err := need(args, 3, "activity remove <day> <i>"); err != nil {
			return err
		}
		ix, err := indexes(args[1:], 2)
		if err != nil {
			return err
		}
		return s.dispatch(studio.RemoveActivity{Day: ix[0], Index: ix[1]})
	}
	return fmt.Errorf("%w: activity %s", studio.ErrInvalidValue, args[0])
}

func (s *shell) price(args []string) error {
	if err := need(args, 1, "price add|set|remove ..."); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		return s.dispatch(studio.AddPricingRow{})
	case "set":
		if err := need(args, 4, "price set <i> label|value <text>"); err != nil {
			return err
		}
		i, err := index(args[1])
		if err != nil {
			return err
		}
		return s.dispatch(studio.SetPricingRow{Index: i, Field: studio.PricingField(args[2]), Value: strings.Join(args[3:], " ")})
	case "remove":
		if err := need(args, 2, "price remove <i>"); err != nil {
			return err
		}
		i, err := index(args[1])
		if err != nil {
			return err
		}
		return s.dispatch(studio.RemovePricingRow{Index: i})
	}
	return fmt.Errorf("%w: price %s", studio.ErrInvalidValue, args[0])
}

func (s *shell) list(args []string) error {
	if err := need(args, 2, "list inclusions|exclusions add|set|remove ..."); err != nil {
		return err
	}
	l, err := model.ParseList(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", studio.ErrInvalidValue, err)
	}
	switch args[1] {
	case "add":
		return s.dispatch(studio.AddListItem{List: l})
	case "set":
		if err := need(args, 4, "list <list> set <i> <text>"); err != nil {
			return err
		}
		i, err := index(args[2])
		if err != nil {
			return err
		}
		return s.dispatch(studio.SetListItem{List: l, Index: i, Value: strings.Join(args[3:], " ")})
	case "remove":
		if err := need(args, 3, "list <list> remove <i>"); err != nil {
			return err
		}
		i, err := index(args[2])
		if err != nil {
			return err
		}
		return s.dispatch(studio.RemoveListItem{List: l, Index: i})
	}
	return fmt.Errorf("%w: list %s", studio.ErrInvalidValue, args[1])
}

func (s *shell) image(args []string) error {
	if err := need(args, 1, "image <target> <file> | image confirm | image cancel"); err != nil {
		return err
	}
	switch args[0] {
	case "confirm":
		return s.dispatch(studio.ConfirmStagedImage{})
	case "cancel":
		return s.dispatch(studio.CancelStagedImage{})
	}
	if err := need(args, 2, "image <target> <file>"); err != nil {
		return err
	}
	target, err := studio.ParseTarget(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if err := s.ctrl.RequestImageReplace(target, filepath.Base(args[1]), fi.Size(), f); err != nil {
		return err
	}
	if s.ctrl.State().Pending != nil {
		infoColor.Fprintf(s.out, "Image staged for %s: image confirm | image cancel\n", target)
	}
	return nil
}

func (s *shell) regen(ctx context.Context, args []string) error {
	if err := need(args, 1, "regen <day>|all [prompt]"); err != nil {
		return err
	}
	prompt := strings.Join(args[1:], " ")
	if args[0] != "all" {
		i, err := index(args[0])
		if err != nil {
			return err
		}
		if _, err := s.ctrl.Dispatch(studio.OpenRegen{Day: i}); err != nil {
			return err
		}
		if prompt != "" {
			_, _ = s.ctrl.Dispatch(studio.SetRegenPrompt{Prompt: prompt})
		}
		if err := s.ctrl.RegenerateImage(ctx, i, prompt); err != nil {
			return err
		}
		okColor.Fprintf(s.out, "Image generated for day %d\n", i)
		return nil
	}

	var bar *progressbar.ProgressBar
	n, err := s.ctrl.RegenerateMissing(ctx, prompt, func(done, total int) {
		if !s.bars {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(s.out),
				progressbar.OptionSetDescription("generating images"),
				progressbar.OptionShowCount(),
			)
		}
		_ = bar.Set(done)
	})
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(s.out)
	}
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Generated %d images\n", n)
	return nil
}

func (s *shell) export(ctx context.Context, args []string) error {
	if err := need(args, 1, "export pdf|jpeg|html [landscape]"); err != nil {
		return err
	}
	kind, err := studio.ParseExportKind(args[0])
	if err != nil {
		return err
	}
	opts := studio.ExportOptions{Landscape: len(args) > 1 && strings.EqualFold(args[1], "landscape")}
	path, err := s.ctrl.Export(ctx, kind, opts)
	if err != nil {
		return err
	}
	okColor.Fprintf(s.out, "Saved %s\n", path)
	return nil
}

// report prints a command failure the way the studio describes it.
func (s *shell) report(err error) {
	errColor.Fprintln(s.out, studio.Describe(err))
}
