// Package studio owns the application state and every operation that changes it.
//
// State is an immutable value. Each operation produces a new State that shares every part of
// the previous one except the path from the root to the changed leaf, so a renderer can
// re-derive its output from any snapshot without observing a partial update.
package studio

import (
	"fmt"
	"strconv"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

type Step string

const (
	StepUpload  Step = "upload"
	StepEdit    Step = "edit"
	StepPreview Step = "preview"
)

type TargetKind string

const (
	TargetCover TargetKind = "cover"
	TargetLogo  TargetKind = "logo"
	TargetDay   TargetKind = "day"
)

// ImageTarget names an image slot of the package.
type ImageTarget struct {
	Kind TargetKind
	Day  int
}

func Cover() ImageTarget { return ImageTarget{Kind: TargetCover} }
func Logo() ImageTarget { return ImageTarget{Kind: TargetLogo} }
func Day(i int) ImageTarget { return ImageTarget{Kind: TargetDay, Day: i} }

func (t ImageTarget) String() string {
	if t.Kind == TargetDay {
		return "day " + strconv.Itoa(t.Day)
	}
	return string(t.Kind)
}

// ParseTarget reads "cover", "logo" or a zero-based day index.
func ParseTarget(s string) (ImageTarget, error) {
	switch TargetKind(s) {
	case TargetCover:
		return Cover(), nil
	case TargetLogo:
		return Logo(), nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return ImageTarget{}, fmt.Errorf("%w: image target %q (cover, logo or a day index)", ErrInvalidValue, s)
	}
	return Day(i), nil
}

// StagedImage is an uploaded image held back until the user confirms it.
type StagedImage struct {
	Target ImageTarget
	URL    string
}

// RegenPrompt is the open "regenerate with AI" editor for one day.
type RegenPrompt struct {
	Day    int
	Prompt string
}

type State struct {
	Step      Step
	Package   *model.TravelPackage
	IsLoading bool
	Error     string
	Pending   *StagedImage
	Regen     *RegenPrompt
}

// Initial is the state before any document has been uploaded.
func Initial() State {
	return State{Step: StepUpload}
}
