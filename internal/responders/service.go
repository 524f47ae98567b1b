package responders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mr1hm/go-emergency-assist/internal/geo"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

// ErrNoResponders means every tier came back empty. The seed tier makes this
// unreachable unless it was left out of the ladder.
var ErrNoResponders = errors.New("no responders found")

type Categorizer interface {
	Categorize(ctx context.Context, message string) models.Categorization
}

type Service struct {
	categorizer  Categorizer
	tiers        []Resolver
	defaultLimit int
}

// NewService builds the ladder. Tiers are tried in the order given.
func NewService(categorizer Categorizer, defaultLimit int, tiers ...Resolver) *Service {
	if defaultLimit < 1 {
		defaultLimit = 3
	}
	return &Service{
		categorizer:  categorizer,
		tiers:        tiers,
		defaultLimit: defaultLimit,
	}
}

func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

func (s *Service) Categorize(ctx context.Context, message string) models.Categorization {
	if s.categorizer == nil {
		return models.DefaultCategorization()
	}
	return s.categorizer.Categorize(ctx, message)
}

// Resolve categorizes a message and finds responders for it in one pass.
func (s *Service) Resolve(ctx context.Context, message string, at models.Coordinate) (models.Categorization, []models.Responder, error) {
	if err := at.Validate(); err != nil {
		return models.Categorization{}, nil, err
	}

	cat := s.Categorize(ctx, message)
	responders, err := s.Responders(ctx, cat.Category, at, s.defaultLimit)
	if err != nil {
		return cat, nil, err
	}
	return cat, responders, nil
}

// Responders walks the tiers in order and returns the first non-empty result,
// ranked by distance.
func (s *Service) Responders(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Responder, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	category = models.ParseCategory(string(category))

	for _, tier := range s.tiers {
		candidates, err := tier.Resolve(ctx, category, at, limit)
		if err != nil {
			slog.Warn("tier failed, falling back",
				"tier", tier.Name(),
				"category", category,
				"error", err,
			)
			continue
		}
		if len(candidates) == 0 {
			slog.Debug("tier returned no candidates", "tier", tier.Name(), "category", category)
			continue
		}

		slog.Info("responders resolved",
			"tier", tier.Name(),
			"category", category,
			"count", min(len(candidates), limit),
		)
		return normalize(tier.Name(), category, candidates, limit), nil
	}

	return nil, fmt.Errorf("%w for %s at %s", ErrNoResponders, category, at)
}

// TierStatus reports whether each tier has what it needs to answer.
func (s *Service) TierStatus() map[string]bool {
	status := make(map[string]bool, len(s.tiers))
	for _, tier := range s.tiers {
		ok := true
		if c, isConfigurable := tier.(Configurable); isConfigurable {
			ok = c.Configured()
		}
		status[tier.Name()] = ok
	}
	return status
}

func normalize(tier string, category models.Category, candidates []models.Candidate, limit int) []models.Responder {
	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sortByDistance(sorted)
	sorted = truncate(sorted, limit)

	out := make([]models.Responder, len(sorted))
	for i, c := range sorted {
		out[i] = models.Responder{
			Name:     c.Name,
			Address:  c.Address,
			Distance: geo.RoundKm(c.Distance),
			Type:     category.String(),
			PlaceID:  tier + ":" + c.SourceID,
			Location: c.Location,
			Phone:    c.Phone,
			Rating:   c.Rating,
			Priority: i + 1,
			Hours:    c.Hours,
		}
	}
	return out
}
