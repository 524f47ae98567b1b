// Package responders resolves nearby emergency responders for a category and
// coordinate by walking a fixed ladder of resolution tiers.
package responders

import (
	"context"
	"sort"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

// Resolver is one tier of the ladder. Implementations return candidates sorted
// by ascending distance and truncated to limit. An empty result means the tier
// had nothing to offer and the next tier should be tried.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Candidate, error)
}

// Configurable is implemented by tiers that depend on credentials.
type Configurable interface {
	Configured() bool
}

func sortByDistance(cs []models.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Distance < cs[j].Distance
	})
}

func truncate(cs []models.Candidate, limit int) []models.Candidate {
	if limit >= 0 && len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
