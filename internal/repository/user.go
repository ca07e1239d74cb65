package repository

import (
	"context"

	"courier/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByToken retrieves a user by API token.
	GetByToken(ctx context.Context, token string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// SetAvailability updates a driver's availability flag.
	SetAvailability(ctx context.Context, id string, available bool) error
}
