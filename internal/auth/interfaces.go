package auth

import (
	"context"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
)

// SessionManager abstracts the Redis-backed refresh session lifecycle.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// CartProvisioner creates the cart row for freshly registered accounts.
type CartProvisioner interface {
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
}
