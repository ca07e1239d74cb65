package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/repository"
)

// PaymentGateway is the interface for an external payment provider. The
// gateway only reports an outcome; it never touches delivery state.
type PaymentGateway interface {
	Charge(ctx context.Context, delivery *domain.Delivery) (*ChargeResult, error)
}

// ChargeResult is the outcome reported by a payment gateway.
type ChargeResult struct {
	Reference string
	Succeeded bool
}

// MockGateway is a PaymentGateway that always succeeds.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge simulates a capture and always succeeds.
func (g *MockGateway) Charge(ctx context.Context, delivery *domain.Delivery) (*ChargeResult, error) {
	return &ChargeResult{
		Reference: fmt.Sprintf("pay_%s", uuid.New().String()[:8]),
		Succeeded: true,
	}, nil
}

// PaymentService records payment outcomes on deliveries. Settlement of
// driver earnings is not handled here: an earning is created only when the
// delivered transition finds the payment already captured.
type PaymentService struct {
	deliveryRepo repository.DeliveryRepository
	gateway      PaymentGateway
	dispatcher   *NotificationDispatcher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	deliveryRepo repository.DeliveryRepository,
	gateway PaymentGateway,
	dispatcher *NotificationDispatcher,
) *PaymentService {
	return &PaymentService{
		deliveryRepo: deliveryRepo,
		gateway:      gateway,
		dispatcher:   dispatcher,
	}
}

// Pay charges the client for their delivery through the gateway and records
// the outcome.
func (s *PaymentService) Pay(ctx context.Context, deliveryID string, actor *domain.User) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if delivery.ClientID != actor.ID {
		return nil, ErrUnauthorized
	}
	if delivery.PaymentStatus == domain.PaymentStatusPaid {
		return nil, ErrPaymentProcessed
	}

	result, err := s.gateway.Charge(ctx, delivery)
	if err != nil {
		return nil, err
	}

	status := domain.PaymentStatusFailed
	if result.Succeeded {
		status = domain.PaymentStatusPaid
	}

	if err := s.deliveryRepo.UpdatePayment(ctx, delivery.ID, status, result.Reference); err != nil {
		return nil, err
	}

	delivery.PaymentStatus = status
	delivery.PaymentReference = result.Reference

	if status == domain.PaymentStatusPaid && s.dispatcher != nil {
		s.dispatcher.NotifyPaymentReceived(delivery)
	}

	return delivery, nil
}
