package model

import "strings"

const (
	DefaultPackageName = "Motorcycle Tour"
	DefaultDestination = "The Open Road"
	DefaultDuration    = "Custom Duration"
	DefaultCurrency    = "USD"
)

// Draft is the partial package returned by the structuring model. Empty strings and nil
// slices mean the field was absent from the source document.
type Draft struct {
	PackageName string         `json:"packageName"`
	Destination string         `json:"destination"`
	Duration    string         `json:"duration"`
	Currency    string         `json:"currency"`
	Pricing     []PricingRow   `json:"pricing"`
	Inclusions  []string       `json:"inclusions"`
	Exclusions  []string       `json:"exclusions"`
	Itinerary   []ItineraryDay `json:"itinerary"`

	// Fixed price fields from older documents, folded into Pricing by Normalize.
	SoloBikePrice    string `json:"soloBikePrice,omitempty"`
	DualRiderPrice   string `json:"dualRiderPrice,omitempty"`
	OwnBikePrice     string `json:"ownBikePrice,omitempty"`
	ExtraPrice       string `json:"extraPrice,omitempty"`
	DualSharingExtra string `json:"dualSharingExtra,omitempty"`
	SingleRoomExtra  string `json:"singleRoomExtra,omitempty"`
}

type legacyPrice struct {
	label string
	value func(Draft) string
}

var legacyPrices = []legacyPrice{
	{"Solo Bike Price", func(d Draft) string { return d.SoloBikePrice }},
	{"Dual Rider Price", func(d Draft) string { return d.DualRiderPrice }},
	{"Own Bike Price", func(d Draft) string { return d.OwnBikePrice }},
	{"Extra Price", func(d Draft) string { return d.ExtraPrice }},
	{"Dual Sharing Extra Cost", func(d Draft) string { return d.DualSharingExtra }},
	{"Single Room Extra Cost", func(d Draft) string { return d.SingleRoomExtra }},
}

// MigratePricing returns the dynamic pricing rows for d. Fixed legacy fields are appended
// after any rows already present, in their historical order, skipping empty values.
func (d Draft) MigratePricing() []PricingRow {
	rows := make([]PricingRow, 0, len(d.Pricing)+len(legacyPrices))
	rows = append(rows, d.Pricing...)
	for _, lp := range legacyPrices {
		if v := strings.TrimSpace(lp.value(d)); v != "" {
			rows = append(rows, PricingRow{Label: lp.label, Value: v})
		}
	}
	return rows
}

// Normalize builds a complete package from the draft, substituting defaults for every absent
// scalar and empty sequences for absent arrays. The package starts on the luxe theme with the
// given preset.
func (d Draft) Normalize(luxe ThemeStyles) TravelPackage {
	days := make([]ItineraryDay, len(d.Itinerary))
	for i, day := range d.Itinerary {
		if day.Activities == nil {
			day.Activities = []string{}
		}
		days[i] = day
	}
	return TravelPackage{
		PackageName: orDefault(d.PackageName, DefaultPackageName),
		Destination: orDefault(d.Destination, DefaultDestination),
		Duration:    orDefault(d.Duration, DefaultDuration),
		Currency:    orDefault(d.Currency, DefaultCurrency),
		Pricing:     d.MigratePricing(),
		Inclusions:  nonNil(d.Inclusions),
		Exclusions:  nonNil(d.Exclusions),
		Itinerary:   days,
		Theme:       ThemeLuxe,
		Styles:      luxe,
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
