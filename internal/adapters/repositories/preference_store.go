package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mappy/internal/domain"
	"mappy/internal/platform/db"
)

// SQL-backed implementation of the PreferenceStore port.
type SQLPreferenceStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPreferenceStore(conn *sql.DB, dialect db.Dialect) *SQLPreferenceStore {
	return &SQLPreferenceStore{DB: conn, Dialect: dialect}
}

// Return the stored theme for clientID.
func (s *SQLPreferenceStore) Theme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("preference store: DB is nil")
	}
	if strings.TrimSpace(clientID) == "" {
		return "", false, errors.New("get theme: client id must not be empty")
	}

	query := db.Rebind(s.Dialect, `
	SELECT theme
	FROM preferences
	WHERE client_id = ?;
	`)

	var raw string
	err := s.DB.QueryRowContext(ctx, query, clientID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get theme: query preferences table: %w", err)
	}

	theme, err := domain.ParseTheme(raw)
	if err != nil {
		return "", false, fmt.Errorf("get theme client=%q: %w", clientID, err)
	}
	return theme, true, nil
}

// Persist theme for clientID, replacing any earlier choice.
func (s *SQLPreferenceStore) SetTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	if s.DB == nil {
		return errors.New("preference store: DB is nil")
	}
	if strings.TrimSpace(clientID) == "" {
		return errors.New("set theme: client id must not be empty")
	}
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}

	query := db.Rebind(s.Dialect, `
	INSERT INTO preferences (client_id, theme, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (client_id) DO UPDATE
	SET theme = excluded.theme,
		updated_at = excluded.updated_at;
	`)

	if _, err := s.DB.ExecContext(ctx, query, clientID, string(theme), time.Now().Unix()); err != nil {
		return fmt.Errorf("set theme client=%q: %w", clientID, err)
	}
	return nil
}
