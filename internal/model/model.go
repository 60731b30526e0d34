// Package model holds the travel package document that the studio edits and the render
// pipeline turns into a brochure.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ThemeType string

const (
	ThemeLuxe       ThemeType = "luxe"
	ThemeVanguard   ThemeType = "vanguard"
	ThemeWanderlust ThemeType = "wanderlust"
)

// Themes lists every theme in display order.
var Themes = []ThemeType{ThemeLuxe, ThemeVanguard, ThemeWanderlust}

func ParseTheme(s string) (ThemeType, error) {
	t := ThemeType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

type FontStyle string

const (
	FontNormal FontStyle = "normal"
	FontItalic FontStyle = "italic"
)

type ThemeStyles struct {
	PrimaryColor    string    `json:"primaryColor"`
	AccentColor     string    `json:"accentColor"`
	BackgroundColor string    `json:"backgroundColor"`
	HeadingFont     string    `json:"headingFont"`
	HeadingWeight   string    `json:"headingWeight"`
	HeadingStyle    FontStyle `json:"headingStyle"`
	BodyFont        string    `json:"bodyFont"`
	BodyWeight      string    `json:"bodyWeight"`
	BodyStyle       FontStyle `json:"bodyStyle"`
}

type PricingRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ItineraryDay is one entry of the itinerary. Day is only a label; the position in
// TravelPackage.Itinerary decides render order.
type ItineraryDay struct {
	Day         int      `json:"day"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description,omitempty"`
	Activities  []string `json:"activities"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// UnmarshalJSON accepts the day number as any JSON number or numeric string and rounds it
// to the nearest integer. Model output often writes 1.0 for 1.
func (d *ItineraryDay) UnmarshalJSON(b []byte) error {
	type plain ItineraryDay
	aux := struct {
		*plain
		Day json.RawMessage `json:"day"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	raw := strings.Trim(strings.TrimSpace(string(aux.Day)), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("itinerary day number %s is not a number", aux.Day)
	}
	d.Day = int(math.Round(f))
	return nil
}

// TravelPackage is the root document. LogoURL, CoverImageURL and ItineraryDay.ImageURL hold
// either a remote URL or a base64 data URL.
type TravelPackage struct {
	PackageName    string         `json:"packageName"`
	Destination    string         `json:"destination"`
	Duration       string         `json:"duration"`
	Currency       string         `json:"currency"`
	Pricing        []PricingRow   `json:"pricing"`
	Inclusions     []string       `json:"inclusions"`
	Exclusions     []string       `json:"exclusions"`
	Itinerary      []ItineraryDay `json:"itinerary"`
	ContactDetails string         `json:"contactDetails,omitempty"`
	Terms          string         `json:"terms,omitempty"`
	LogoURL        string         `json:"logoUrl,omitempty"`
	CoverImageURL  string         `json:"coverImageUrl,omitempty"`
	CompanyName    string         `json:"companyName,omitempty"`
	Theme          ThemeType      `json:"theme"`
	Styles         ThemeStyles    `json:"styles"`
}

// CoverImage returns the image shown on the cover: the explicit cover, else the first day's image.
func (p *TravelPackage) CoverImage() string {
	if p.CoverImageURL != "" {
		return p.CoverImageURL
	}
	if len(p.Itinerary) > 0 {
		return p.Itinerary[0].ImageURL
	}
	return ""
}

// Summary is the narrative handed to the image model for a day.
func (d ItineraryDay) Summary() string {
	if strings.TrimSpace(d.Description) != "" {
		return d.Description
	}
	return strings.Join(d.Activities, ". ")
}
