package repository

import (
	"context"
	"errors"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

var ErrNotFound = errors.New("not found")

type AlertFilter struct {
	UserID string
	Limit  int
}

type AlertRepository interface {
	CreateAlert(ctx context.Context, a *models.Alert) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error)
	UpdateAlertStatus(ctx context.Context, id, status string) (*models.Alert, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
}

// Store is what a backend provides.
type Store interface {
	AlertRepository
	UserRepository
	Close() error
}

// Open returns the backend named by kind ("sqlite" or "memory").
func Open(kind, path string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		db, err := NewSQLiteDB(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.New("unknown store backend: " + kind)
	}
}
