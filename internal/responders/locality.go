package responders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mr1hm/go-emergency-assist/internal/llm"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

// Locator turns a coordinate into a "City, State" label for the knowledge tier.
type Locator struct {
	gen      llm.Generator
	model    string
	fallback string
	cache    *cache.Cache
}

type LocatorOptions struct {
	Model    string
	Fallback string
	TTL      time.Duration
	// CleanupInterval of 0 disables the background janitor.
	CleanupInterval time.Duration
}

func NewLocator(gen llm.Generator, opts LocatorOptions) *Locator {
	if opts.Fallback == "" {
		opts.Fallback = "India"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Locator{
		gen:      gen,
		model:    opts.Model,
		fallback: opts.Fallback,
		cache:    cache.New(opts.TTL, opts.CleanupInterval),
	}
}

// Locality never fails; any problem yields the fallback label, which is not cached.
func (l *Locator) Locality(ctx context.Context, at models.Coordinate) string {
	if l.gen == nil {
		return l.fallback
	}

	key := fmt.Sprintf("%.3f,%.3f", at.Lat, at.Lng)
	if v, ok := l.cache.Get(key); ok {
		return v.(string)
	}

	prompt := fmt.Sprintf(`What is the city/town name at coordinates %v, %v in India? Return ONLY the city and state in format: "City, State". For example: "Bangalore, Karnataka" or "Mumbai, Maharashtra". Return ONLY the city name, nothing else.`, at.Lat, at.Lng)

	raw, err := l.gen.Generate(ctx, llm.Request{Model: l.model, Prompt: prompt})
	if err != nil {
		slog.Warn("locality lookup failed", "at", at.String(), "error", err)
		return l.fallback
	}

	name := cleanLocality(raw)
	if name == "" {
		return l.fallback
	}

	l.cache.SetDefault(key, name)
	slog.Debug("locality resolved", "at", at.String(), "locality", name)
	return name
}

func cleanLocality(raw string) string {
	s := llm.StripCodeFence(raw)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(s)
	return strings.TrimSpace(s)
}
