package service

import (
	"context"
	"errors"
	"time"

	"courier/internal/domain"
	"courier/internal/redis"
	"courier/internal/repository"
)

// LifecycleService validates and applies delivery status transitions.
// Every accepted transition commits the status change and its audit event
// in one transaction; the delivered transition additionally settles the
// driver's earning before the commit.
type LifecycleService struct {
	store        repository.Store
	deliveryRepo repository.DeliveryRepository
	cache        redis.TrackingCacheInterface
	dispatcher   *NotificationDispatcher
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	store repository.Store,
	deliveryRepo repository.DeliveryRepository,
	cache redis.TrackingCacheInterface,
	dispatcher *NotificationDispatcher,
) *LifecycleService {
	return &LifecycleService{
		store:        store,
		deliveryRepo: deliveryRepo,
		cache:        cache,
		dispatcher:   dispatcher,
	}
}

// AdvanceRequest contains the parameters for advancing a delivery.
type AdvanceRequest struct {
	DeliveryID string
	Status     domain.DeliveryStatus
	Driver     *domain.User
	Notes      string
	Location   string
}

// Advance moves a delivery one step forward. Only the assigned driver may
// advance, only along the transition table, and the conditional update is
// predicated on the status read inside the same transaction: of two
// concurrent advances, the loser sees zero rows and fails with
// ErrInvalidTransition, leaving status and driver_id untouched.
func (s *LifecycleService) Advance(ctx context.Context, req AdvanceRequest) (*domain.Delivery, error) {
	if req.DeliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if !domain.IsDriverStep(req.Status) {
		return nil, ErrInvalidStatus
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	delivery, err := tx.Deliveries().GetByID(ctx, req.DeliveryID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if delivery.DriverID == "" || delivery.DriverID != req.Driver.ID {
		_ = tx.Rollback()
		return nil, ErrUnauthorized
	}

	if !domain.CanTransition(delivery.Status, req.Status) {
		_ = tx.Rollback()
		return nil, ErrInvalidTransition
	}

	moved, err := tx.Deliveries().AdvanceStatus(ctx, delivery.ID, delivery.Status, req.Status)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if !moved {
		// A concurrent transition won; the requested step is no longer
		// legal from the now-current status.
		_ = tx.Rollback()
		return nil, ErrInvalidTransition
	}

	event := &domain.StatusEvent{
		DeliveryID: delivery.ID,
		Status:     req.Status,
		Location:   req.Location,
		Notes:      req.Notes,
		CreatedAt:  time.Now(),
	}
	if err := tx.StatusEvents().Append(ctx, event); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var earning *domain.DriverEarning
	if req.Status == domain.DeliveryStatusDelivered && delivery.PaymentStatus == domain.PaymentStatusPaid {
		earning = ComputeEarning(delivery)
		if err := tx.Earnings().Create(ctx, earning); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				_ = tx.Rollback()
				return nil, err
			}
			// Already settled for this delivery; the unique constraint is
			// the guarantee, not this check.
			earning = nil
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	delivery.Status = req.Status
	delivery.UpdatedAt = event.CreatedAt

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, delivery.TrackingNumber)
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyStatusChanged(delivery, req.Status)
		if earning != nil {
			s.dispatcher.NotifyEarningRecorded(earning)
		}
	}

	return delivery, nil
}

// Cancel marks a delivery cancelled. Only the owning client (or an admin)
// may cancel, and only while the delivery is pending or accepted.
func (s *LifecycleService) Cancel(ctx context.Context, deliveryID string, actor *domain.User) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	delivery, err := tx.Deliveries().GetByID(ctx, deliveryID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && delivery.ClientID != actor.ID {
		_ = tx.Rollback()
		return nil, ErrUnauthorized
	}

	if !domain.CanCancel(delivery.Status) {
		_ = tx.Rollback()
		return nil, ErrInvalidTransition
	}

	moved, err := tx.Deliveries().AdvanceStatus(ctx, delivery.ID, delivery.Status, domain.DeliveryStatusCancelled)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if !moved {
		// Lost the race, typically against a claim. The cancel is retried
		// by the caller from the accepted state if still wanted.
		_ = tx.Rollback()
		return nil, ErrInvalidTransition
	}

	event := &domain.StatusEvent{
		DeliveryID: delivery.ID,
		Status:     domain.DeliveryStatusCancelled,
		CreatedAt:  time.Now(),
	}
	if err := tx.StatusEvents().Append(ctx, event); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	delivery.Status = domain.DeliveryStatusCancelled
	delivery.UpdatedAt = event.CreatedAt

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, delivery.TrackingNumber)
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyDeliveryCancelled(delivery)
	}

	return delivery, nil
}
