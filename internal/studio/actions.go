package studio

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
	"github.com/thywilljoshua/itinerary-architect/internal/theme"
)

const (
	NewActivityText = "New Activity Pointer"
	NewPriceLabel   = "New Price"
	NewListItemText = "New item"
	NewDayTitle     = "New Day"
)

// Action is one state transition. Actions never modify the State they are given.
type Action interface {
	apply(s State) (State, error)
}

// Reduce applies a to s. On error s is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

// withPackage replaces the package with fn's result. Without a package it is a no-op.
func withPackage(s State, fn func(p model.TravelPackage) (model.TravelPackage, error)) (State, error) {
	if s.Package == nil {
		return s, nil
	}
	p, err := fn(*s.Package)
	if err != nil {
		return s, err
	}
	s.Package = &p
	return s, nil
}

func withDay(s State, i int, fn func(d model.ItineraryDay) (model.ItineraryDay, error)) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		if i < 0 || i >= len(p.Itinerary) {
			return p, outOfRange("day", i, len(p.Itinerary))
		}
		d, err := fn(p.Itinerary[i])
		if err != nil {
			return p, err
		}
		days := slices.Clone(p.Itinerary)
		days[i] = d
		p.Itinerary = days
		return p, nil
	})
}

func setAt(items []string, i int, v, what string) ([]string, error) {
	if i < 0 || i >= len(items) {
		return nil, outOfRange(what, i, len(items))
	}
	out := slices.Clone(items)
	out[i] = v
	return out, nil
}

func removeAt[T any](items []T, i int, what string) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, outOfRange(what, i, len(items))
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}

func appendTo[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}

type SetField struct {
	Field model.Field
	Value string
}

func (a SetField) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		return p.With(a.Field, a.Value), nil
	})
}

type SetDayField struct {
	Day   int
	Field model.DayField
	Value string
}

func (a SetDayField) apply(s State) (State, error) {
	return withDay(s, a.Day, func(d model.ItineraryDay) (model.ItineraryDay, error) {
		switch a.Field {
		case model.DayNumber:
			n, err := strconv.Atoi(strings.TrimSpace(a.Value))
			if err != nil {
				return d, fmt.Errorf("%w: day number %q", ErrInvalidValue, a.Value)
			}
			d.Day = n
		case model.DayTitle:
			d.Title = a.Value
		case model.DayLocation:
			d.Location = a.Value
		case model.DayDescription:
			d.Description = a.Value
		case model.DayImageURL:
			d.ImageURL = a.Value
		default:
			return d, fmt.Errorf("%w: day field %q", ErrInvalidValue, a.Field)
		}
		return d, nil
	})
}

type SetActivity struct {
	Day, Index int
	Value      string
}

func (a SetActivity) apply(s State) (State, error) {
	return withDay(s, a.Day, func(d model.ItineraryDay) (model.ItineraryDay, error) {
		acts, err := setAt(d.Activities, a.Index, a.Value, "activity")
		if err != nil {
			return d, err
		}
		d.Activities = acts
		return d, nil
	})
}

type AddActivity struct{ Day int }

func (a AddActivity) apply(s State) (State, error) {
	return withDay(s, a.Day, func(d model.ItineraryDay) (model.ItineraryDay, error) {
		d.Activities = appendTo(d.Activities, NewActivityText)
		return d, nil
	})
}

type RemoveActivity struct{ Day, Index int }

func (a RemoveActivity) apply(s State) (State, error) {
	return withDay(s, a.Day, func(d model.ItineraryDay) (model.ItineraryDay, error) {
		acts, err := removeAt(d.Activities, a.Index, "activity")
		if err != nil {
			return d, err
		}
		d.Activities = acts
		return d, nil
	})
}

// AddDay appends an empty day numbered after the last one.
type AddDay struct{}

func (AddDay) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		n := len(p.Itinerary) + 1
		if len(p.Itinerary) > 0 {
			n = p.Itinerary[len(p.Itinerary)-1].Day + 1
		}
		p.Itinerary = appendTo(p.Itinerary, model.ItineraryDay{Day: n, Title: NewDayTitle, Activities: []string{}})
		return p, nil
	})
}

type RemoveDay struct{ Day int }

func (a RemoveDay) apply(s State) (State, error) {
	next, err := withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		days, err := removeAt(p.Itinerary, a.Day, "day")
		if err != nil {
			return p, err
		}
		p.Itinerary = days
		return p, nil
	})
	if err != nil || next.Package == nil {
		return next, err
	}
	// Day indexes after the removed one shift; drop UI state that points at them.
	if next.Regen != nil && next.Regen.Day >= a.Day {
		next.Regen = nil
	}
	if next.Pending != nil && next.Pending.Target.Kind == TargetDay && next.Pending.Target.Day >= a.Day {
		next.Pending = nil
	}
	return next, nil
}

type PricingField string

const (
	PriceLabel PricingField = "label"
	PriceValue PricingField = "value"
)

type SetPricingRow struct {
	Index int
	Field PricingField
	Value string
}

func (a SetPricingRow) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		if a.Index < 0 || a.Index >= len(p.Pricing) {
			return p, outOfRange("pricing row", a.Index, len(p.Pricing))
		}
		rows := slices.Clone(p.Pricing)
		switch a.Field {
		case PriceLabel:
			rows[a.Index].Label = a.Value
		case PriceValue:
			rows[a.Index].Value = a.Value
		default:
			return p, fmt.Errorf("%w: pricing field %q", ErrInvalidValue, a.Field)
		}
		p.Pricing = rows
		return p, nil
	})
}

type AddPricingRow struct{}

func (AddPricingRow) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		p.Pricing = appendTo(p.Pricing, model.PricingRow{Label: NewPriceLabel})
		return p, nil
	})
}

type RemovePricingRow struct{ Index int }

func (a RemovePricingRow) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		rows, err := removeAt(p.Pricing, a.Index, "pricing row")
		if err != nil {
			return p, err
		}
		p.Pricing = rows
		return p, nil
	})
}

type SetListItem struct {
	List  model.List
	Index int
	Value string
}

func (a SetListItem) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		items, err := setAt(p.Items(a.List), a.Index, a.Value, string(a.List))
		if err != nil {
			return p, err
		}
		return p.WithItems(a.List, items), nil
	})
}

type AddListItem struct{ List model.List }

func (a AddListItem) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		return p.WithItems(a.List, appendTo(p.Items(a.List), NewListItemText)), nil
	})
}

type RemoveListItem struct {
	List  model.List
	Index int
}

func (a RemoveListItem) apply(s State) (State, error) {
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		items, err := removeAt(p.Items(a.List), a.Index, string(a.List))
		if err != nil {
			return p, err
		}
		return p.WithItems(a.List, items), nil
	})
}

// SetTheme swaps the theme and resets every style attribute to its preset.
type SetTheme struct{ Theme model.ThemeType }

func (a SetTheme) apply(s State) (State, error) {
	if _, err := model.ParseTheme(string(a.Theme)); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		p.Theme = a.Theme
		p.Styles = theme.Preset(a.Theme)
		return p, nil
	})
}

var (
	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	weight   = regexp.MustCompile(`^[1-9]00$`)
)

// SetStyleField overrides one style attribute and leaves the rest untouched.
type SetStyleField struct {
	Field model.StyleField
	Value string
}

func (a SetStyleField) apply(s State) (State, error) {
	v := strings.TrimSpace(a.Value)
	switch a.Field {
	case model.StylePrimaryColor, model.StyleAccentColor, model.StyleBackgroundColor:
		if !hexColor.MatchString(v) {
			return s, fmt.Errorf("%w: color %q (want #rgb or #rrggbb)", ErrInvalidValue, a.Value)
		}
	case model.StyleHeadingWeight, model.StyleBodyWeight:
		if !weight.MatchString(v) {
			return s, fmt.Errorf("%w: weight %q (want 100-900)", ErrInvalidValue, a.Value)
		}
	case model.StyleHeadingStyle, model.StyleBodyStyle:
		if v != string(model.FontNormal) && v != string(model.FontItalic) {
			return s, fmt.Errorf("%w: font style %q (want normal or italic)", ErrInvalidValue, a.Value)
		}
	case model.StyleHeadingFont, model.StyleBodyFont:
		if v == "" {
			return s, fmt.Errorf("%w: empty font family", ErrInvalidValue)
		}
	default:
		return s, fmt.Errorf("%w: style field %q", ErrInvalidValue, a.Field)
	}
	return withPackage(s, func(p model.TravelPackage) (model.TravelPackage, error) {
		p.Styles = p.Styles.With(a.Field, v)
		return p, nil
	})
}

type ShowPreview struct{}

func (ShowPreview) apply(s State) (State, error) {
	if s.Step != StepEdit || s.Package == nil {
		return s, fmt.Errorf("%w: preview needs an edited package", ErrWrongStep)
	}
	s.Step = StepPreview
	return s, nil
}

// BackToEditor leaves the preview. A staged image belongs to the preview and is discarded.
type BackToEditor struct{}

func (BackToEditor) apply(s State) (State, error) {
	if s.Step != StepPreview {
		return s, fmt.Errorf("%w: not in preview", ErrWrongStep)
	}
	s.Step = StepEdit
	s.Pending = nil
	s.Regen = nil
	return s, nil
}

// StartOver returns to the upload step. The current package stays until a new upload
// replaces it.
type StartOver struct{}

func (StartOver) apply(s State) (State, error) {
	s.Step = StepUpload
	s.Pending = nil
	s.Regen = nil
	s.Error = ""
	return s, nil
}

func setImage(s State, t ImageTarget, url string) (State, error) {
	switch t.Kind {
	case TargetCover:
		return SetField{Field: model.FieldCoverImageURL, Value: url}.apply(s)
	case TargetLogo:
		return SetField{Field: model.FieldLogoURL, Value: url}.apply(s)
	case TargetDay:
		return SetDayField{Day: t.Day, Field: model.DayImageURL, Value: url}.apply(s)
	}
	return s, fmt.Errorf("%w: image target %q", ErrInvalidValue, t.Kind)
}

// ApplyImage writes an image into its slot immediately.
type ApplyImage struct {
	Target ImageTarget
	URL    string
}

func (a ApplyImage) apply(s State) (State, error) {
	return setImage(s, a.Target, a.URL)
}

// ReplaceImage is a user-supplied image: staged for confirmation in preview, applied
// directly while editing.
type ReplaceImage struct {
	Target ImageTarget
	URL    string
}

func (a ReplaceImage) apply(s State) (State, error) {
	if s.Step == StepPreview {
		return StageImage(a).apply(s)
	}
	return setImage(s, a.Target, a.URL)
}

type StageImage struct {
	Target ImageTarget
	URL    string
}

func (a StageImage) apply(s State) (State, error) {
	if s.Package == nil {
		return s, nil
	}
	if a.Target.Kind == TargetDay && (a.Target.Day < 0 || a.Target.Day >= len(s.Package.Itinerary)) {
		return s, outOfRange("day", a.Target.Day, len(s.Package.Itinerary))
	}
	s.Pending = &StagedImage{Target: a.Target, URL: a.URL}
	return s, nil
}

type ConfirmStagedImage struct{}

func (ConfirmStagedImage) apply(s State) (State, error) {
	if s.Pending == nil {
		return s, nil
	}
	next, err := setImage(s, s.Pending.Target, s.Pending.URL)
	if err != nil {
		return s, err
	}
	next.Pending = nil
	return next, nil
}

type CancelStagedImage struct{}

func (CancelStagedImage) apply(s State) (State, error) {
	s.Pending = nil
	return s, nil
}

// OpenRegen opens the regeneration prompt editor for a day.
type OpenRegen struct{ Day int }

func (a OpenRegen) apply(s State) (State, error) {
	if s.Package == nil {
		return s, nil
	}
	if a.Day < 0 || a.Day >= len(s.Package.Itinerary) {
		return s, outOfRange("day", a.Day, len(s.Package.Itinerary))
	}
	s.Regen = &RegenPrompt{Day: a.Day}
	return s, nil
}

type SetRegenPrompt struct{ Prompt string }

func (a SetRegenPrompt) apply(s State) (State, error) {
	if s.Regen == nil {
		return s, nil
	}
	s.Regen = &RegenPrompt{Day: s.Regen.Day, Prompt: a.Prompt}
	return s, nil
}

type CloseRegen struct{}

func (CloseRegen) apply(s State) (State, error) {
	s.Regen = nil
	return s, nil
}

type DismissError struct{}

func (DismissError) apply(s State) (State, error) {
	s.Error = ""
	return s, nil
}

// The actions below are issued by the Controller around adapter calls.

type beginLoading struct{}

func (beginLoading) apply(s State) (State, error) {
	s.IsLoading = true
	s.Error = ""
	return s, nil
}

type endLoading struct{}

func (endLoading) apply(s State) (State, error) {
	s.IsLoading = false
	return s, nil
}

type fail struct{ Message string }

func (a fail) apply(s State) (State, error) {
	s.IsLoading = false
	s.Error = a.Message
	return s, nil
}

type uploaded struct{ Package model.TravelPackage }

func (a uploaded) apply(s State) (State, error) {
	p := a.Package
	return State{Step: StepEdit, Package: &p}, nil
}

// regenerated writes a generated image and closes the prompt editor. Batch results leave
// the editor open.
type regenerated struct {
	Day   int
	URL   string
	batch bool
}

func (a regenerated) apply(s State) (State, error) {
	next, err := setImage(s, Day(a.Day), a.URL)
	if err != nil {
		return s, err
	}
	if !a.batch {
		next.Regen = nil
	}
	return next, nil
}

// startUpload begins an upload. Uploads are only accepted on the upload step.
type startUpload struct{}

func (startUpload) apply(s State) (State, error) {
	if s.Step != StepUpload {
		return s, fmt.Errorf("%w: upload is only available on the upload step", ErrWrongStep)
	}
	return beginLoading{}.apply(s)
}

// startExport begins an export. Exports are only available from the preview, once any
// staged image has been confirmed or cancelled.
type startExport struct{}

func (startExport) apply(s State) (State, error) {
	if s.Step != StepPreview || s.Package == nil {
		return s, fmt.Errorf("%w: export is only available from the preview", ErrWrongStep)
	}
	if s.Pending != nil {
		return s, fmt.Errorf("%w: confirm or cancel the staged image before exporting", ErrWrongStep)
	}
	return beginLoading{}.apply(s)
}
