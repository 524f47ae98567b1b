package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[string]models.Alert
	users  map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts: make(map[string]models.Alert),
		users:  make(map[string]models.User),
	}
}

func (s *MemoryStore) CreateAlert(ctx context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[a.ID]; exists {
		return fmt.Errorf("alert %s already exists", a.ID)
	}
	s.alerts[a.ID] = cloneAlert(*a)
	return nil
}

func (s *MemoryStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAlert(a)
	return &a, nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Alert{}
	for _, a := range s.alerts {
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		result = append(result, cloneAlert(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (s *MemoryStore) UpdateAlertStatus(ctx context.Context, id, status string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	s.alerts[id] = a

	a = cloneAlert(a)
	return &a, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	s.users[u.ID] = cloneUser(*u)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Apply(patch)
	u = cloneUser(u)
	s.users[id] = u

	u = cloneUser(u)
	return &u, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Stored values must not share slices with callers.
func cloneAlert(a models.Alert) models.Alert {
	a.Responders = slices.Clone(a.Responders)
	return a
}

func cloneUser(u models.User) models.User {
	u.EmergencyContacts = slices.Clone(u.EmergencyContacts)
	return u
}
