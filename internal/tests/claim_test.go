package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"courier/internal/domain"
	"courier/internal/repository"
	"courier/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER CLAIM RACES
// ──────────────────────────────────────────────

func newTestDriver(id string) *domain.User {
	return &domain.User{
		ID:        id,
		Name:      "Driver " + id,
		Role:      domain.RoleDriver,
		Verified:  true,
		Available: true,
	}
}

func newPendingDelivery(id string) *domain.Delivery {
	return &domain.Delivery{
		ID:             id,
		TrackingNumber: "TRK-" + id,
		ClientID:       "client-1",
		PackageSize:    domain.PackageSizeMedium,
		PackageWeight:  3,
		DeliveryType:   domain.DeliveryTypeStandard,
		Price:          22.00,
		PaymentStatus:  domain.PaymentStatusPending,
		Status:         domain.DeliveryStatusPending,
		CreatedAt:      time.Now(),
	}
}

func TestClaim_AssignsDriverAndRecordsEvent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.AddDelivery(newPendingDelivery("delivery-1"))
	svc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)

	delivery, err := svc.Claim(context.Background(), "delivery-1", newTestDriver("driver-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if delivery.Status != domain.DeliveryStatusAccepted {
		t.Errorf("expected status %s, got %s", domain.DeliveryStatusAccepted, delivery.Status)
	}
	if delivery.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", delivery.DriverID)
	}
	if n := store.EventCount("delivery-1"); n != 1 {
		t.Errorf("expected 1 status event, got %d", n)
	}
}

func TestClaim_ExactlyOneOfConcurrentDriversWins(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.AddDelivery(newPendingDelivery("delivery-1"))
	svc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		driver := newTestDriver(fmt.Sprintf("driver-%d", i))
		wg.Add(1)
		go func(d *domain.User) {
			defer wg.Done()
			_, err := svc.Claim(context.Background(), "delivery-1", d)
			errs <- err
		}(driver)
	}

	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, service.ErrAlreadyClaimed) {
			t.Fatalf("loser got unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winning claim, got %d", wins)
	}

	final := store.GetDelivery("delivery-1")
	if final.Status != domain.DeliveryStatusAccepted {
		t.Errorf("expected final status %s, got %s", domain.DeliveryStatusAccepted, final.Status)
	}
	if final.DriverID == "" {
		t.Error("expected a driver assigned")
	}
	if n := store.EventCount("delivery-1"); n != 1 {
		t.Errorf("expected exactly 1 accepted event, got %d", n)
	}
}

func TestClaim_ConcurrentClaimVsCancel(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.AddDelivery(newPendingDelivery("delivery-1"))
	claimSvc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)
	lifecycleSvc := service.NewLifecycleService(store, store.DeliveryRepo(), nil, nil)

	client := &domain.User{ID: "client-1", Role: domain.RoleClient}

	var wg sync.WaitGroup
	var claimErr, cancelErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, claimErr = claimSvc.Claim(context.Background(), "delivery-1", newTestDriver("driver-1"))
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = lifecycleSvc.Cancel(context.Background(), "delivery-1", client)
	}()
	wg.Wait()

	if claimErr != nil && !errors.Is(claimErr, service.ErrAlreadyClaimed) {
		t.Fatalf("claim got unexpected error: %v", claimErr)
	}
	if cancelErr != nil && !errors.Is(cancelErr, service.ErrInvalidTransition) {
		t.Fatalf("cancel got unexpected error: %v", cancelErr)
	}

	// A claim that lost to the cancel must have left no trace.
	final := store.GetDelivery("delivery-1")
	if claimErr != nil && final.DriverID != "" {
		t.Errorf("failed claim still assigned driver %q", final.DriverID)
	}

	switch final.Status {
	case domain.DeliveryStatusAccepted:
		if claimErr != nil || cancelErr == nil {
			t.Errorf("status accepted but claimErr=%v cancelErr=%v", claimErr, cancelErr)
		}
	case domain.DeliveryStatusCancelled:
		if cancelErr != nil {
			t.Errorf("status cancelled but cancel failed: %v", cancelErr)
		}
	default:
		t.Errorf("unexpected final status %s", final.Status)
	}
}

func TestClaim_DriverPreconditions(t *testing.T) {
	t.Parallel()

	unverified := newTestDriver("driver-1")
	unverified.Verified = false

	unavailable := newTestDriver("driver-2")
	unavailable.Available = false

	client := &domain.User{ID: "client-1", Role: domain.RoleClient, Verified: true, Available: true}

	cases := []struct {
		name    string
		driver  *domain.User
		wantErr error
	}{
		{"unverified driver", unverified, service.ErrDriverNotVerified},
		{"unavailable driver", unavailable, service.ErrDriverNotAvailable},
		{"client role", client, service.ErrNotADriver},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemoryStore()
			store.AddDelivery(newPendingDelivery("delivery-1"))
			svc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)

			_, err := svc.Claim(context.Background(), "delivery-1", tc.driver)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			// Rejected claims must not touch the delivery.
			final := store.GetDelivery("delivery-1")
			if final.Status != domain.DeliveryStatusPending || final.DriverID != "" {
				t.Errorf("rejected claim mutated delivery: status=%s driver=%q", final.Status, final.DriverID)
			}
		})
	}
}

func TestClaim_MissingDeliveryReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	svc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)

	_, err := svc.Claim(context.Background(), "nope", newTestDriver("driver-1"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaim_AlreadyAcceptedDeliveryIsRejected(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	claimed := newPendingDelivery("delivery-1")
	claimed.Status = domain.DeliveryStatusAccepted
	claimed.DriverID = "driver-1"
	store.AddDelivery(claimed)
	svc := service.NewClaimService(store, store.DeliveryRepo(), nil, nil)

	_, err := svc.Claim(context.Background(), "delivery-1", newTestDriver("driver-2"))
	if !errors.Is(err, service.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}

	final := store.GetDelivery("delivery-1")
	if final.DriverID != "driver-1" {
		t.Errorf("assignment changed to %q", final.DriverID)
	}
}

// brokenReadDeliveryRepo fails every direct read while delegating the rest,
// standing in for a pool connection that drops right after a commit.
type brokenReadDeliveryRepo struct {
	repository.DeliveryRepository
}

func (r *brokenReadDeliveryRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	return nil, errors.New("read tcp: connection reset by peer")
}

func TestClaim_CommittedClaimSurvivesFailedFollowupRead(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.AddDelivery(newPendingDelivery("delivery-1"))
	broken := &brokenReadDeliveryRepo{DeliveryRepository: store.DeliveryRepo()}
	svc := service.NewClaimService(store, broken, nil, nil)

	delivery, err := svc.Claim(context.Background(), "delivery-1", newTestDriver("driver-1"))
	if err != nil {
		t.Fatalf("claim reported failure despite committing: %v", err)
	}

	if delivery.Status != domain.DeliveryStatusAccepted {
		t.Errorf("returned status %s, want %s", delivery.Status, domain.DeliveryStatusAccepted)
	}
	if delivery.DriverID != "driver-1" {
		t.Errorf("returned driver %q, want driver-1", delivery.DriverID)
	}
	if got := store.GetDelivery("delivery-1"); got.DriverID != "driver-1" {
		t.Errorf("stored driver %q, want driver-1", got.DriverID)
	}
}

func TestClaim_NotifiesClient(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.AddDelivery(newPendingDelivery("delivery-1"))

	notificationRepo := NewMockNotificationRepository()
	dispatcher := service.NewNotificationDispatcher(notificationRepo, 8)
	dispatcher.Start()

	svc := service.NewClaimService(store, store.DeliveryRepo(), nil, dispatcher)
	if _, err := svc.Claim(context.Background(), "delivery-1", newTestDriver("driver-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dispatcher.Stop()

	got, err := notificationRepo.ListByUser(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Type != domain.NotificationDeliveryClaimed {
		t.Errorf("expected type %s, got %s", domain.NotificationDeliveryClaimed, got[0].Type)
	}
}
