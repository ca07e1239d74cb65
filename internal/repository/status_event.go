package repository

import (
	"context"

	"courier/internal/domain"
)

// StatusEventRepository defines the persistence operations for the
// append-only status audit log. Events are never updated or deleted.
type StatusEventRepository interface {
	// Append inserts a new status event.
	Append(ctx context.Context, event *domain.StatusEvent) error

	// ListByDelivery retrieves the events of a delivery in commit order.
	ListByDelivery(ctx context.Context, deliveryID string) ([]*domain.StatusEvent, error)
}
