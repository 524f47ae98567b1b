package responders

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mr1hm/go-emergency-assist/internal/llm"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

var delhi = models.Coordinate{Lat: 28.6139, Lng: 77.2090}

type mockResolver struct {
	name       string
	candidates []models.Candidate
	err        error
	calls      int
}

func (m *mockResolver) Name() string { return m.name }

func (m *mockResolver) Resolve(ctx context.Context, category models.Category, at models.Coordinate, limit int) ([]models.Candidate, error) {
	m.calls++
	return m.candidates, m.err
}

var errUpstream = errors.New("upstream unavailable")

// fakeGenerator answers locality prompts and search prompts separately.
type fakeGenerator struct {
	mu        sync.Mutex
	locality  string
	search    string
	err       error
	prompts   []string
	localityN int
	searchN   int
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, req.Prompt)
	if strings.Contains(req.Prompt, "city/town name") {
		f.localityN++
		if f.err != nil {
			return "", f.err
		}
		return f.locality, nil
	}
	f.searchN++
	if f.err != nil {
		return "", f.err
	}
	return f.search, nil
}

type fakeCategorizer struct {
	result models.Categorization
	calls  int
}

func (f *fakeCategorizer) Categorize(ctx context.Context, message string) models.Categorization {
	f.calls++
	return f.result
}
