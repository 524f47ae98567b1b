package responders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/mr1hm/go-emergency-assist/internal/geo"
	"github.com/mr1hm/go-emergency-assist/internal/llm"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

var knowledgeQueries = map[models.Category]string{
	models.CategoryMedical:      "emergency hospitals and medical centers",
	models.CategoryPolice:       "police stations",
	models.CategoryMentalHealth: "mental health crisis centers, counseling services and helplines",
	models.CategoryDisaster:     "fire stations and disaster response units",
	models.CategoryFinance:      "financial consumer protection offices and helplines",
}

// Knowledge asks the model for real facilities it knows near the caller's
// locality. Used when the directory is unavailable.
type Knowledge struct {
	gen     llm.Generator
	model   string
	locator *Locator
}

func NewKnowledge(gen llm.Generator, model string, locator *Locator) *Knowledge {
	return &Knowledge{gen: gen, model: model, locator: locator}
}

func (k *Knowledge) Name() string { return "knowledge" }

func (k *Knowledge) Configured() bool { return k.gen != nil }

func (k *Knowledge) Resolve(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Candidate, error) {
	if k.gen == nil {
		return nil, nil
	}

	locality := fmt.Sprintf("coordinates %.4f, %.4f in India", at.Lat, at.Lng)
	if k.locator != nil {
		locality = k.locator.Locality(ctx, at)
	}

	raw, err := k.gen.Generate(ctx, llm.Request{
		Model:  k.model,
		Prompt: knowledgePrompt(category, locality, limit),
	})
	if err != nil {
		return nil, fmt.Errorf("error searching knowledge for %s near %s: %w", category, locality, err)
	}

	candidates := parseKnowledge(raw, at)
	if len(candidates) == 0 {
		slog.Debug("knowledge search returned nothing usable", "category", category, "locality", locality)
		return nil, nil
	}

	sortByDistance(candidates)
	return truncate(candidates, limit), nil
}

func knowledgePrompt(category models.Category, locality string, limit int) string {
	what, ok := knowledgeQueries[category]
	if !ok {
		what = knowledgeQueries[models.CategoryMedical]
	}

	return fmt.Sprintf(`Find the %[1]d nearest REAL %[2]s near %[3]s. Use only facilities you know actually exist.

Return a valid JSON array in exactly this format, with no markdown, no backticks and no other text:
[
  {
    "name": "Official Name",
    "address": "Full Address, City, State",
    "phone": "+91-XXX-XXX-XXXX",
    "distance": 2.5,
    "hours": "24/7 or specific hours",
    "lat": 0.0,
    "lng": 0.0
  }
]

Rules:
- Return ONLY facilities in %[3]s, not Delhi unless that is the user's location.
- Include phone numbers with the +91 country code.
- distance is the approximate distance in km; lat and lng are the facility's coordinates if known.
- Return at most %[1]d entries.`, limit, what, locality)
}

type knowledgeEntry struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	Distance flexNum  `json:"distance"`
	Hours    string   `json:"hours"`
	Rating   *flexNum `json:"rating"`
	Lat      *flexNum `json:"lat"`
	Lng      *flexNum `json:"lng"`
}

// flexNum accepts 2.5, "2.5" and "2.5 km". Anything else decodes as NaN.
type flexNum float64

func (f *flexNum) UnmarshalJSON(b []byte) error {
	*f = flexNum(math.NaN())

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexNum(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "km"))
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexNum(n)
	}
	return nil
}

func (f *flexNum) valid() bool {
	return f != nil && !math.IsNaN(float64(*f)) && !math.IsInf(float64(*f), 0)
}

func parseKnowledge(raw string, at models.Coordinate) []models.Candidate {
	arr, ok := extractJSONArray(llm.StripCodeFence(raw))
	if !ok {
		slog.Warn("no JSON array in knowledge response")
		return nil
	}

	var entries []knowledgeEntry
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		slog.Warn("error decoding knowledge response", "error", err)
		return nil
	}

	out := make([]models.Candidate, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}

		c := models.Candidate{
			Name:     name,
			Address:  strings.TrimSpace(e.Address),
			Location: at,
			Phone:    strings.TrimSpace(e.Phone),
			Hours:    strings.TrimSpace(e.Hours),
			SourceID: slug(name),
		}
		if e.Rating.valid() {
			r := float64(*e.Rating)
			c.Rating = &r
		}

		loc := models.Coordinate{}
		if e.Lat.valid() && e.Lng.valid() {
			loc = models.Coordinate{Lat: float64(*e.Lat), Lng: float64(*e.Lng)}
		}
		switch {
		case e.Lat.valid() && e.Lng.valid() && loc.Validate() == nil && (loc.Lat != 0 || loc.Lng != 0):
			c.Location = loc
			c.Distance = geo.DistanceKm(at, loc)
		case e.Distance.valid() && e.Distance >= 0:
			c.Distance = float64(e.Distance)
		}

		out = append(out, c)
	}
	return out
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
