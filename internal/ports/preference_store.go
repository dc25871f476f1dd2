package ports

import (
	"context"

	"mappy/internal/domain"
)

// Port: persisted per-client UI preferences.
type PreferenceStore interface {
	// Return the stored theme; ok is false when the client never chose one.
	Theme(ctx context.Context, clientID string) (theme domain.Theme, ok bool, err error)
	SetTheme(ctx context.Context, clientID string, theme domain.Theme) error
}
