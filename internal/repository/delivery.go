package repository

import (
	"context"

	"courier/internal/domain"
)

// DeliveryRepository defines the persistence operations for deliveries.
//
// Claim and AdvanceStatus are conditional writes: each is a single
// predicate-qualified update that reports whether a row changed. They are
// the only way driver_id and status are ever mutated, which is what makes
// concurrent claims and advances race-safe.
type DeliveryRepository interface {
	// Create persists a new delivery.
	Create(ctx context.Context, delivery *domain.Delivery) error

	// GetByID retrieves a delivery by ID.
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)

	// GetByTrackingNumber retrieves a delivery by its tracking number.
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Delivery, error)

	// ListByClient retrieves deliveries owned by a client, newest first.
	ListByClient(ctx context.Context, clientID string) ([]*domain.Delivery, error)

	// ListByDriver retrieves deliveries assigned to a driver, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error)

	// ListPending retrieves unclaimed deliveries, oldest first.
	ListPending(ctx context.Context) ([]*domain.Delivery, error)

	// Claim assigns a driver to a delivery iff it is still pending and
	// unassigned. Returns false when the conditional update affected no row.
	Claim(ctx context.Context, deliveryID, driverID string) (bool, error)

	// AdvanceStatus moves a delivery from one status to another iff its
	// current status still equals from. Returns false when no row changed.
	AdvanceStatus(ctx context.Context, deliveryID string, from, to domain.DeliveryStatus) (bool, error)

	// UpdatePayment records a payment outcome on a delivery.
	UpdatePayment(ctx context.Context, deliveryID string, status domain.PaymentStatus, reference string) error
}
