package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

type Category string

const (
	CategoryMedical      Category = "medical"
	CategoryPolice       Category = "police"
	CategoryMentalHealth Category = "mental_health"
	CategoryDisaster     Category = "disaster"
	CategoryFinance      Category = "finance"
	CategoryGeneral      Category = "general"
)

// Categories lists every category the classifier may return, in prompt order.
var Categories = []Category{
	CategoryMedical,
	CategoryPolice,
	CategoryMentalHealth,
	CategoryDisaster,
	CategoryFinance,
	CategoryGeneral,
}

// ParseCategory maps free text to a Category. Unknown values become general.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryGeneral
}

func (c Category) String() string {
	return string(c)
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func ParseSeverity(s string) Severity {
	v := Severity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Severities {
		if v == known {
			return v
		}
	}
	return SeverityMedium
}

// DefaultSuggestedAction is returned whenever the classifier cannot produce a result.
const DefaultSuggestedAction = "Contact emergency services immediately"

type Categorization struct {
	Category          Category `json:"category"`
	Severity          Severity `json:"severity"`
	Keywords          []string `json:"keywords"`
	SuggestedAction   string   `json:"suggestedAction"`
	DetectedLanguage  string   `json:"detectedLanguage,omitempty"`
	TranslatedMessage string   `json:"translatedMessage,omitempty"`
}

// DefaultCategorization is the safe fallback used when classification fails.
func DefaultCategorization() Categorization {
	return Categorization{
		Category:        CategoryGeneral,
		Severity:        SeverityMedium,
		Keywords:        []string{},
		SuggestedAction: DefaultSuggestedAction,
	}
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)
}
