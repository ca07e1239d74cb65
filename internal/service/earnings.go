package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/repository"
)

// CommissionRate is the platform's cut of a delivery price.
const CommissionRate = 0.20

// ComputeEarning derives the payout record for a delivered, paid delivery.
// Conservation holds by construction: Commission + NetAmount == Amount.
func ComputeEarning(d *domain.Delivery) *domain.DriverEarning {
	commission := roundToCents(d.Price * CommissionRate)
	return &domain.DriverEarning{
		ID:         uuid.New().String(),
		DriverID:   d.DriverID,
		DeliveryID: d.ID,
		Amount:     d.Price,
		Commission: commission,
		NetAmount:  roundToCents(d.Price - commission),
		Status:     domain.EarningStatusPending,
		CreatedAt:  time.Now(),
	}
}

// EarningsService exposes read access to driver earnings. Earning rows are
// only ever created by the lifecycle transaction that marks a delivery
// delivered; this service never writes.
type EarningsService struct {
	earningRepo repository.EarningRepository
}

// NewEarningsService creates a new EarningsService.
func NewEarningsService(earningRepo repository.EarningRepository) *EarningsService {
	return &EarningsService{earningRepo: earningRepo}
}

// ListForDriver retrieves a driver's earnings, newest first.
func (s *EarningsService) ListForDriver(ctx context.Context, driverID string) ([]*domain.DriverEarning, error) {
	if driverID == "" {
		return nil, ErrUnauthorized
	}
	return s.earningRepo.ListByDriver(ctx, driverID)
}
