package tests

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"courier/internal/domain"
	"courier/internal/repository"
	"courier/internal/service"
)

// ──────────────────────────────────────────────
// DELIVERY CREATION AND TRACKING
// ──────────────────────────────────────────────

var trackingNumberPattern = regexp.MustCompile(`^TRK-[0-9A-F]{10}$`)

func TestCreateDelivery_StartsPendingWithServerPrice(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	created := f.createDelivery(t, "client-1")

	if created.Status != domain.DeliveryStatusPending {
		t.Errorf("expected pending, got %s", created.Status)
	}
	if created.DriverID != "" {
		t.Errorf("new delivery must be unassigned, got driver %q", created.DriverID)
	}
	if created.Price != 22.00 {
		t.Errorf("expected server-computed price 22.00, got %.2f", created.Price)
	}
	if !trackingNumberPattern.MatchString(created.TrackingNumber) {
		t.Errorf("tracking number %q does not match expected format", created.TrackingNumber)
	}
	if created.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected payment pending, got %s", created.PaymentStatus)
	}

	// The creation transaction records the initial pending event.
	if n := f.store.EventCount(created.ID); n != 1 {
		t.Errorf("expected 1 status event, got %d", n)
	}
}

func TestCreateDelivery_Validation(t *testing.T) {
	t.Parallel()

	valid := func() service.CreateDeliveryRequest {
		return service.CreateDeliveryRequest{
			ClientID:            "client-1",
			PickupAddress:       "1 Origin St",
			PickupContactName:   "Sender",
			DeliveryAddress:     "2 Target Ave",
			DeliveryContactName: "Receiver",
			PackageSize:         domain.PackageSizeSmall,
			PackageWeight:       1,
			DeliveryType:        domain.DeliveryTypeStandard,
		}
	}

	cases := []struct {
		name    string
		mutate  func(*service.CreateDeliveryRequest)
		wantErr error
	}{
		{"missing client", func(r *service.CreateDeliveryRequest) { r.ClientID = "" }, service.ErrInvalidClientID},
		{"missing pickup address", func(r *service.CreateDeliveryRequest) { r.PickupAddress = "" }, service.ErrMissingAddress},
		{"missing dropoff address", func(r *service.CreateDeliveryRequest) { r.DeliveryAddress = "" }, service.ErrMissingAddress},
		{"missing contact", func(r *service.CreateDeliveryRequest) { r.DeliveryContactName = "" }, service.ErrMissingContact},
		{"bad size", func(r *service.CreateDeliveryRequest) { r.PackageSize = "huge" }, service.ErrInvalidPackageSize},
		{"bad type", func(r *service.CreateDeliveryRequest) { r.DeliveryType = "drone" }, service.ErrInvalidDeliveryType},
		{"negative weight", func(r *service.CreateDeliveryRequest) { r.PackageWeight = -2 }, service.ErrInvalidWeight},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newLifecycleFixture()
			req := valid()
			tc.mutate(&req)

			_, err := f.delivery.Create(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGetForActor_ScopesByRole(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	created := f.createDelivery(t, "client-1")

	owner := &domain.User{ID: "client-1", Role: domain.RoleClient}
	if _, err := f.delivery.GetForActor(context.Background(), created.ID, owner); err != nil {
		t.Errorf("owner read failed: %v", err)
	}

	stranger := &domain.User{ID: "client-2", Role: domain.RoleClient}
	if _, err := f.delivery.GetForActor(context.Background(), created.ID, stranger); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for stranger, got %v", err)
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	if _, err := f.delivery.GetForActor(context.Background(), created.ID, admin); err != nil {
		t.Errorf("admin read failed: %v", err)
	}
}

func TestTrack_ReturnsOrderedHistory(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	driver := newTestDriver("driver-1")
	created := f.createDelivery(t, "client-1")

	if _, err := f.claim.Claim(context.Background(), created.ID, driver); err != nil {
		t.Fatalf("claim: %v", err)
	}
	f.advance(t, created.ID, driver, domain.DeliveryStatusPickedUp)

	result, err := f.delivery.Track(context.Background(), created.TrackingNumber)
	if err != nil {
		t.Fatalf("track: %v", err)
	}

	if result.Status != domain.DeliveryStatusPickedUp {
		t.Errorf("expected picked_up, got %s", result.Status)
	}

	want := []domain.DeliveryStatus{
		domain.DeliveryStatusPending,
		domain.DeliveryStatusAccepted,
		domain.DeliveryStatusPickedUp,
	}
	if len(result.History) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(result.History))
	}
	for i, status := range want {
		if result.History[i].Status != status {
			t.Errorf("event %d: expected %s, got %s", i, status, result.History[i].Status)
		}
	}
}

func TestTrack_UnknownNumber(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	if _, err := f.delivery.Track(context.Background(), "TRK-DOESNOTEXIST"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.delivery.Track(context.Background(), ""); !errors.Is(err, service.ErrInvalidTrackingNumber) {
		t.Errorf("expected ErrInvalidTrackingNumber, got %v", err)
	}
}
