package service

import (
	"context"
	"errors"
	"time"

	"courier/internal/domain"
	"courier/internal/redis"
	"courier/internal/repository"
)

// ClaimService lets exactly one driver acquire an unassigned delivery.
// Correctness rests on a single conditional write against the store; there
// is no read-then-write gap for concurrent claims or a racing cancel to
// slip through.
type ClaimService struct {
	store        repository.Store
	deliveryRepo repository.DeliveryRepository
	cache        redis.TrackingCacheInterface
	dispatcher   *NotificationDispatcher
}

// NewClaimService creates a new ClaimService.
func NewClaimService(
	store repository.Store,
	deliveryRepo repository.DeliveryRepository,
	cache redis.TrackingCacheInterface,
	dispatcher *NotificationDispatcher,
) *ClaimService {
	return &ClaimService{
		store:        store,
		deliveryRepo: deliveryRepo,
		cache:        cache,
		dispatcher:   dispatcher,
	}
}

// Claim assigns the delivery to the driver iff it is still pending and
// unassigned. Exactly one of N concurrent claims succeeds; the rest fail
// with ErrAlreadyClaimed and write nothing.
func (s *ClaimService) Claim(ctx context.Context, deliveryID string, driver *domain.User) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if driver.Role != domain.RoleDriver {
		return nil, ErrNotADriver
	}
	if !driver.Verified {
		return nil, ErrDriverNotVerified
	}
	if !driver.Available {
		return nil, ErrDriverNotAvailable
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	claimed, err := tx.Deliveries().Claim(ctx, deliveryID, driver.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if !claimed {
		_ = tx.Rollback()
		// Zero rows affected: the delivery is gone, or a concurrent actor
		// claimed or cancelled it first.
		if _, err := s.deliveryRepo.GetByID(ctx, deliveryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}
		return nil, ErrAlreadyClaimed
	}

	event := &domain.StatusEvent{
		DeliveryID: deliveryID,
		Status:     domain.DeliveryStatusAccepted,
		CreatedAt:  time.Now(),
	}
	if err := tx.StatusEvents().Append(ctx, event); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	// Read the claimed row inside the transaction. Once Commit succeeds the
	// claim is durable, so no later read failure may turn it into an error.
	delivery, err := tx.Deliveries().GetByID(ctx, deliveryID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, delivery.TrackingNumber)
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyDeliveryClaimed(delivery, driver)
	}

	return delivery, nil
}
