package model

import "fmt"

// Field enumerates the editable scalar fields of a TravelPackage.
type Field string

const (
	FieldPackageName    Field = "packageName"
	FieldDestination    Field = "destination"
	FieldDuration       Field = "duration"
	FieldCurrency       Field = "currency"
	FieldCompanyName    Field = "companyName"
	FieldLogoURL        Field = "logoUrl"
	FieldCoverImageURL  Field = "coverImageUrl"
	FieldContactDetails Field = "contactDetails"
	FieldTerms          Field = "terms"
)

var fields = []Field{
	FieldPackageName, FieldDestination, FieldDuration, FieldCurrency, FieldCompanyName,
	FieldLogoURL, FieldCoverImageURL, FieldContactDetails, FieldTerms,
}

func ParseField(s string) (Field, error) {
	for _, f := range fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// With returns a copy of p with field f set to v.
func (p TravelPackage) With(f Field, v string) TravelPackage {
	switch f {
	case FieldPackageName:
		p.PackageName = v
	case FieldDestination:
		p.Destination = v
	case FieldDuration:
		p.Duration = v
	case FieldCurrency:
		p.Currency = v
	case FieldCompanyName:
		p.CompanyName = v
	case FieldLogoURL:
		p.LogoURL = v
	case FieldCoverImageURL:
		p.CoverImageURL = v
	case FieldContactDetails:
		p.ContactDetails = v
	case FieldTerms:
		p.Terms = v
	}
	return p
}

// DayField enumerates the editable fields of an ItineraryDay. Activities have their own
// operations.
type DayField string

const (
	DayNumber      DayField = "day"
	DayTitle       DayField = "title"
	DayLocation    DayField = "location"
	DayDescription DayField = "description"
	DayImageURL    DayField = "imageUrl"
)

var dayFields = []DayField{DayNumber, DayTitle, DayLocation, DayDescription, DayImageURL}

func ParseDayField(s string) (DayField, error) {
	for _, f := range dayFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown day field %q", s)
}

// StyleField enumerates the attributes of ThemeStyles.
type StyleField string

const (
	StylePrimaryColor    StyleField = "primaryColor"
	StyleAccentColor     StyleField = "accentColor"
	StyleBackgroundColor StyleField = "backgroundColor"
	StyleHeadingFont     StyleField = "headingFont"
	StyleHeadingWeight   StyleField = "headingWeight"
	StyleHeadingStyle    StyleField = "headingStyle"
	StyleBodyFont        StyleField = "bodyFont"
	StyleBodyWeight      StyleField = "bodyWeight"
	StyleBodyStyle       StyleField = "bodyStyle"
)

var styleFields = []StyleField{
	StylePrimaryColor, StyleAccentColor, StyleBackgroundColor,
	StyleHeadingFont, StyleHeadingWeight, StyleHeadingStyle,
	StyleBodyFont, StyleBodyWeight, StyleBodyStyle,
}

func ParseStyleField(s string) (StyleField, error) {
	for _, f := range styleFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown style field %q", s)
}

// With returns a copy of s with field f set to v. Values are not validated here.
func (s ThemeStyles) With(f StyleField, v string) ThemeStyles {
	switch f {
	case StylePrimaryColor:
		s.PrimaryColor = v
	case StyleAccentColor:
		s.AccentColor = v
	case StyleBackgroundColor:
		s.BackgroundColor = v
	case StyleHeadingFont:
		s.HeadingFont = v
	case StyleHeadingWeight:
		s.HeadingWeight = v
	case StyleHeadingStyle:
		s.HeadingStyle = FontStyle(v)
	case StyleBodyFont:
		s.BodyFont = v
	case StyleBodyWeight:
		s.BodyWeight = v
	case StyleBodyStyle:
		s.BodyStyle = FontStyle(v)
	}
	return s
}

// List names one of the plain string sequences of a package.
type List string

const (
	ListInclusions List = "inclusions"
	ListExclusions List = "exclusions"
)

func ParseList(s string) (List, error) {
	switch List(s) {
	case ListInclusions, ListExclusions:
		return List(s), nil
	}
	return "", fmt.Errorf("unknown list %q", s)
}

// Items returns the sequence named by l.
func (p *TravelPackage) Items(l List) []string {
	if l == ListExclusions {
		return p.Exclusions
	}
	return p.Inclusions
}

// WithItems returns a copy of p with the sequence named by l replaced.
func (p TravelPackage) WithItems(l List, items []string) TravelPackage {
	if l == ListExclusions {
		p.Exclusions = items
	} else {
		p.Inclusions = items
	}
	return p
}
