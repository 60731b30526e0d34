package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/thywilljoshua/itinerary-architect/internal/model"
)

// Structurer turns extracted document text into a partial travel package.
type Structurer interface {
	Structure(ctx context.Context, text string) (model.Draft, error)
}

// ImageRequest describes the scene of one itinerary day.
type ImageRequest struct {
	Location     string
	Title        string
	Description  string
	CustomPrompt string
}

// Imager generates a picture for a day and returns it as a data URL.
type Imager interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// KeySource yields the API key to use for the next call.
type KeySource interface {
	APIKey() string
}

// StaticKey is a KeySource with a fixed key.
type StaticKey string

func (k StaticKey) APIKey() string { return string(k) }

// Noop generates no images.
type Noop struct{}

func (Noop) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	return "", fmt.Errorf("%w: image generation is disabled", ErrNoImageReturned)
}

// Heuristic structures a document without a model: a "Day N: ..." line opens a day and
// its sentences become the day's pointers. Lines before the first day name the package.
type Heuristic struct{}

var dayLine = regexp.MustCompile(`(?i)^\s*day\s*0*(\d+)\s*[:.\-–—)]?\s*(.*)$`)

func (Heuristic) Structure(ctx context.Context, text string) (model.Draft, error) {
	var d model.Draft
	var cur *model.ItineraryDay
	for _, ln := range splitLines(text) {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if m := dayLine.FindStringSubmatch(ln); m != nil {
			n, _ := strconv.Atoi(m[1])
			d.Itinerary = append(d.Itinerary, model.ItineraryDay{Day: n, Activities: []string{}})
			cur = &d.Itinerary[len(d.Itinerary)-1]
			ln = m[2]
		}
		if cur == nil {
			if d.PackageName == "" {
				d.PackageName = ln
			}
			continue
		}
		for _, s := range sentences(ln) {
			if cur.Title == "" {
				cur.Title = s
			}
			cur.Activities = append(cur.Activities, s)
		}
	}
	if len(d.Itinerary) == 0 {
		return d, ErrEmptyResponse
	}
	return d, nil
}

func sentences(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}
