package domain

import "time"

// DeliveryStatus represents the current status of a delivery.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAccepted  DeliveryStatus = "accepted"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// PackageSize represents the size class of a package.
type PackageSize string

const (
	PackageSizeSmall      PackageSize = "small"
	PackageSizeMedium     PackageSize = "medium"
	PackageSizeLarge      PackageSize = "large"
	PackageSizeExtraLarge PackageSize = "extra_large"
)

// DeliveryType represents the service level of a delivery.
type DeliveryType string

const (
	DeliveryTypeStandard DeliveryType = "standard"
	DeliveryTypeExpress  DeliveryType = "express"
	DeliveryTypeEconomy  DeliveryType = "economy"
)

// PaymentStatus represents the payment state of a delivery.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Delivery represents a point-to-point package delivery.
type Delivery struct {
	ID             string
	TrackingNumber string

	ClientID string
	DriverID string // empty until a driver claims the delivery

	PickupAddress      string
	PickupContactName  string
	PickupContactPhone string

	DeliveryAddress      string
	DeliveryContactName  string
	DeliveryContactPhone string

	PackageSize   PackageSize
	PackageWeight float64 // kilograms
	Fragile       bool
	DeliveryType  DeliveryType
	ScheduledAt   time.Time // zero means unscheduled
	Instructions  string

	Price            float64
	PaymentStatus    PaymentStatus
	PaymentMethod    string
	PaymentReference string

	Status    DeliveryStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// transitions is the single source of truth for legal status changes.
// A delivery only ever moves forward along this graph; delivered and
// cancelled have no outgoing edges.
var transitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusAccepted, DeliveryStatusCancelled},
	DeliveryStatusAccepted:  {DeliveryStatusPickedUp, DeliveryStatusCancelled},
	DeliveryStatusPickedUp:  {DeliveryStatusInTransit},
	DeliveryStatusInTransit: {DeliveryStatusDelivered},
	DeliveryStatusDelivered: {},
	DeliveryStatusCancelled: {},
}

// CanTransition reports whether a delivery may move from one status to another.
func CanTransition(from, to DeliveryStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s DeliveryStatus) bool {
	return len(transitions[s]) == 0
}

// CanCancel reports whether a delivery in the given status may be cancelled.
func CanCancel(s DeliveryStatus) bool {
	return CanTransition(s, DeliveryStatusCancelled)
}

// IsDriverStep reports whether a status is a driver-initiated forward step.
func IsDriverStep(s DeliveryStatus) bool {
	switch s {
	case DeliveryStatusPickedUp, DeliveryStatusInTransit, DeliveryStatusDelivered:
		return true
	default:
		return false
	}
}

// ValidPackageSize reports whether s is a known package size.
func ValidPackageSize(s PackageSize) bool {
	switch s {
	case PackageSizeSmall, PackageSizeMedium, PackageSizeLarge, PackageSizeExtraLarge:
		return true
	default:
		return false
	}
}

// ValidDeliveryType reports whether t is a known delivery type.
func ValidDeliveryType(t DeliveryType) bool {
	switch t {
	case DeliveryTypeStandard, DeliveryTypeExpress, DeliveryTypeEconomy:
		return true
	default:
		return false
	}
}
