package service

import "errors"

var (
	// ErrInvalidDeliveryID is returned when a delivery ID is empty.
	ErrInvalidDeliveryID = errors.New("invalid delivery id")

	// ErrInvalidClientID is returned when a client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidPackageSize is returned when the package size is unknown.
	ErrInvalidPackageSize = errors.New("invalid package size")

	// ErrInvalidDeliveryType is returned when the delivery type is unknown.
	ErrInvalidDeliveryType = errors.New("invalid delivery type")

	// ErrInvalidWeight is returned when the package weight is negative.
	ErrInvalidWeight = errors.New("invalid package weight")

	// ErrMissingAddress is returned when a pickup or delivery address is empty.
	ErrMissingAddress = errors.New("pickup and delivery addresses are required")

	// ErrMissingContact is returned when a pickup or delivery contact is empty.
	ErrMissingContact = errors.New("pickup and delivery contacts are required")

	// ErrInvalidTrackingNumber is returned when a tracking number is empty.
	ErrInvalidTrackingNumber = errors.New("invalid tracking number")

	// ErrInvalidStatus is returned when a requested status is not a
	// driver-initiated forward step.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnauthorized is returned when the actor is not permitted to act on
	// the delivery.
	ErrUnauthorized = errors.New("actor not authorized for this delivery")

	// ErrNotADriver is returned when a non-driver attempts a driver operation.
	ErrNotADriver = errors.New("actor is not a driver")

	// ErrDriverNotVerified is returned when an unverified driver attempts a claim.
	ErrDriverNotVerified = errors.New("driver is not verified")

	// ErrDriverNotAvailable is returned when an unavailable driver attempts a claim.
	ErrDriverNotAvailable = errors.New("driver is not available")

	// ErrAlreadyClaimed is returned when a claim lost the race: the delivery
	// was claimed or cancelled by a concurrent actor.
	ErrAlreadyClaimed = errors.New("delivery already claimed")

	// ErrInvalidTransition is returned when a status change is not permitted
	// from the delivery's current status.
	ErrInvalidTransition = errors.New("status transition not permitted")

	// ErrPaymentProcessed is returned when payment was already captured for
	// a delivery.
	ErrPaymentProcessed = errors.New("payment already processed")
)
