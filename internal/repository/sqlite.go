package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-emergency-assist/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection, so ":memory:" is a single database and writes serialize
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			medical_info TEXT,
			emergency_contacts TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			message TEXT NOT NULL,
			category TEXT NOT NULL,
			location TEXT NOT NULL,
			responders TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_user_id ON alerts(user_id);
		CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const alertColumns = `id, user_id, message, category, location, responders, status, created_at`

func (s *SQLiteDB) CreateAlert(ctx context.Context, a *models.Alert) error {
	location, err := json.Marshal(a.Location)
	if err != nil {
		return fmt.Errorf("error encoding location: %w", err)
	}
	responders, err := marshalList(a.Responders)
	if err != nil {
		return fmt.Errorf("error encoding responders: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullString(a.UserID), a.Message, a.Category, string(location), responders, a.Status, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	var args []any

	if opts.UserID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, opts.UserID)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteDB) UpdateAlertStatus(ctx context.Context, id, status string) (*models.Alert, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("error updating alert status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetAlert(ctx, id)
}

const userColumns = `id, name, phone, email, medical_info, emergency_contacts, created_at`

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	contacts, err := marshalList(u.EmergencyContacts)
	if err != nil {
		return fmt.Errorf("error encoding emergency contacts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Phone, u.Email, u.MedicalInfo, contacts, u.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, s.db, id)
}

func (s *SQLiteDB) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	u, err := s.getUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(patch)

	contacts, err := marshalList(u.EmergencyContacts)
	if err != nil {
		return nil, fmt.Errorf("error encoding emergency contacts: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, email = ?, medical_info = ?, emergency_contacts = ? WHERE id = ?`,
		u.Name, u.Phone, u.Email, u.MedicalInfo, contacts, id,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing user update: %w", err)
	}
	return u, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteDB) getUser(ctx context.Context, q queryer, id string) (*models.User, error) {
	var (
		u           models.User
		email, info sql.NullString
		contacts    string
	)
	err := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Phone, &email, &info, &contacts, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	u.Email = email.String
	u.MedicalInfo = info.String
	if err := json.Unmarshal([]byte(contacts), &u.EmergencyContacts); err != nil {
		return nil, fmt.Errorf("error decoding emergency contacts: %w", err)
	}
	return &u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	var (
		a                    models.Alert
		userID               sql.NullString
		location, responders string
		createdAt            time.Time
	)
	if err := row.Scan(&a.ID, &userID, &a.Message, &a.Category, &location, &responders, &a.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning alert: %w", err)
	}

	a.UserID = userID.String
	a.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(location), &a.Location); err != nil {
		return nil, fmt.Errorf("error decoding alert location: %w", err)
	}
	if err := json.Unmarshal([]byte(responders), &a.Responders); err != nil {
		return nil, fmt.Errorf("error decoding alert responders: %w", err)
	}
	return &a, nil
}

// marshalList encodes nil as "[]" so the column always holds an array.
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
