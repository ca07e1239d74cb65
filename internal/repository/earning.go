package repository

import (
	"context"

	"courier/internal/domain"
)

// EarningRepository defines the persistence operations for driver earnings.
type EarningRepository interface {
	// Create persists a new earning. Returns ErrDuplicate when an earning
	// already exists for the same delivery; the uniqueness lives in the
	// store, not in application-level re-checking.
	Create(ctx context.Context, earning *domain.DriverEarning) error

	// ListByDriver retrieves a driver's earnings, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverEarning, error)
}
