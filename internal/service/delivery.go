package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/redis"
	"courier/internal/repository"
)

// DeliveryService handles creation and read access for deliveries.
type DeliveryService struct {
	store        repository.Store
	deliveryRepo repository.DeliveryRepository
	eventRepo    repository.StatusEventRepository
	cache        redis.TrackingCacheInterface
}

// NewDeliveryService creates a new DeliveryService.
func NewDeliveryService(
	store repository.Store,
	deliveryRepo repository.DeliveryRepository,
	eventRepo repository.StatusEventRepository,
	cache redis.TrackingCacheInterface,
) *DeliveryService {
	return &DeliveryService{
		store:        store,
		deliveryRepo: deliveryRepo,
		eventRepo:    eventRepo,
		cache:        cache,
	}
}

// CreateDeliveryRequest contains the parameters for creating a delivery.
type CreateDeliveryRequest struct {
	ClientID string

	PickupAddress      string
	PickupContactName  string
	PickupContactPhone string

	DeliveryAddress      string
	DeliveryContactName  string
	DeliveryContactPhone string

	PackageSize   domain.PackageSize
	PackageWeight float64
	Fragile       bool
	DeliveryType  domain.DeliveryType
	ScheduledAt   time.Time
	Instructions  string
	PaymentMethod string
}

// Create creates a new delivery in the pending state. The price is fixed
// server-side from the estimator; client-supplied prices are ignored. The
// delivery row and its initial status event commit in one transaction.
func (s *DeliveryService) Create(ctx context.Context, req CreateDeliveryRequest) (*domain.Delivery, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	breakdown, err := EstimatePrice(req.PackageSize, req.PackageWeight, req.DeliveryType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	delivery := &domain.Delivery{
		ID:                   uuid.New().String(),
		TrackingNumber:       newTrackingNumber(),
		ClientID:             req.ClientID,
		PickupAddress:        req.PickupAddress,
		PickupContactName:    req.PickupContactName,
		PickupContactPhone:   req.PickupContactPhone,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryContactName:  req.DeliveryContactName,
		DeliveryContactPhone: req.DeliveryContactPhone,
		PackageSize:          req.PackageSize,
		PackageWeight:        req.PackageWeight,
		Fragile:              req.Fragile,
		DeliveryType:         req.DeliveryType,
		ScheduledAt:          req.ScheduledAt,
		Instructions:         req.Instructions,
		Price:                breakdown.Total,
		PaymentStatus:        domain.PaymentStatusPending,
		PaymentMethod:        req.PaymentMethod,
		Status:               domain.DeliveryStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if err := tx.Deliveries().Create(ctx, delivery); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	event := &domain.StatusEvent{
		DeliveryID: delivery.ID,
		Status:     domain.DeliveryStatusPending,
		CreatedAt:  now,
	}
	if err := tx.StatusEvents().Append(ctx, event); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return delivery, nil
}

// GetForActor retrieves a delivery visible to the given actor: clients see
// their own deliveries, drivers the ones assigned to them, admins all.
func (s *DeliveryService) GetForActor(ctx context.Context, deliveryID string, actor *domain.User) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleClient:
		if delivery.ClientID != actor.ID {
			return nil, ErrUnauthorized
		}
	case domain.RoleDriver:
		if delivery.DriverID != actor.ID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}

	return delivery, nil
}

// ListForClient retrieves a client's deliveries, newest first.
func (s *DeliveryService) ListForClient(ctx context.Context, clientID string) ([]*domain.Delivery, error) {
	return s.deliveryRepo.ListByClient(ctx, clientID)
}

// ListForDriver retrieves a driver's assigned deliveries, newest first.
func (s *DeliveryService) ListForDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	return s.deliveryRepo.ListByDriver(ctx, driverID)
}

// ListAvailable retrieves unclaimed deliveries drivers can claim.
func (s *DeliveryService) ListAvailable(ctx context.Context) ([]*domain.Delivery, error) {
	return s.deliveryRepo.ListPending(ctx)
}

// TrackResult is a public tracking response.
type TrackResult struct {
	TrackingNumber string
	Status         domain.DeliveryStatus
	History        []*domain.StatusEvent
}

// Track resolves a tracking number to the delivery's status and history.
// Responses are served from the tracking cache when fresh.
func (s *DeliveryService) Track(ctx context.Context, trackingNumber string) (*TrackResult, error) {
	if trackingNumber == "" {
		return nil, ErrInvalidTrackingNumber
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, trackingNumber); err == nil && cached != nil {
			return trackResultFromCache(cached), nil
		}
	}

	delivery, err := s.deliveryRepo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	history, err := s.eventRepo.ListByDelivery(ctx, delivery.ID)
	if err != nil {
		return nil, err
	}

	result := &TrackResult{
		TrackingNumber: delivery.TrackingNumber,
		Status:         delivery.Status,
		History:        history,
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, trackResultToCache(result))
	}

	return result, nil
}

func trackResultFromCache(cached *redis.CachedTracking) *TrackResult {
	result := &TrackResult{
		TrackingNumber: cached.TrackingNumber,
		Status:         domain.DeliveryStatus(cached.Status),
	}
	for _, e := range cached.History {
		result.History = append(result.History, &domain.StatusEvent{
			Status:    domain.DeliveryStatus(e.Status),
			Location:  e.Location,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		})
	}
	return result
}

func trackResultToCache(result *TrackResult) *redis.CachedTracking {
	cached := &redis.CachedTracking{
		TrackingNumber: result.TrackingNumber,
		Status:         string(result.Status),
	}
	for _, e := range result.History {
		cached.History = append(cached.History, redis.CachedStatusEvent{
			Status:    string(e.Status),
			Location:  e.Location,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		})
	}
	return cached
}

// newTrackingNumber generates a human-facing tracking number, distinct from
// the delivery's internal id.
func newTrackingNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TRK-" + strings.ToUpper(raw[:10])
}

func validateCreateRequest(req CreateDeliveryRequest) error {
	if req.ClientID == "" {
		return ErrInvalidClientID
	}
	if req.PickupAddress == "" || req.DeliveryAddress == "" {
		return ErrMissingAddress
	}
	if req.PickupContactName == "" || req.DeliveryContactName == "" {
		return ErrMissingContact
	}
	if !domain.ValidPackageSize(req.PackageSize) {
		return ErrInvalidPackageSize
	}
	if !domain.ValidDeliveryType(req.DeliveryType) {
		return ErrInvalidDeliveryType
	}
	if req.PackageWeight < 0 {
		return ErrInvalidWeight
	}
	return nil
}
