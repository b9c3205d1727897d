package provider

import (
	"context"
	"fmt"

	"github.com/renthub-cl/renthub/internal/db"
)

// Directory answers provider-existence checks against the providers table.
// Satisfies maintenance.ProviderDirectory.
type Directory struct{}

// Exists reports whether a provider with the given id is registered.
func (Directory) Exists(ctx context.Context, providerID string) (bool, error) {
	var exists bool
	err := db.Conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`, providerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking provider %s: %w", providerID, err)
	}
	return exists, nil
}

// UserID returns the platform user behind a provider, empty when the
// provider has no linked account. Used for notification routing.
func UserID(ctx context.Context, providerID string) (string, error) {
	var userID string
	err := db.Conn.QueryRow(ctx,
		`SELECT COALESCE(user_id::text, '') FROM providers WHERE id = $1`, providerID,
	).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("resolving provider user %s: %w", providerID, err)
	}
	return userID, nil
}
