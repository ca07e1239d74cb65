package domain

import "time"

// EarningStatus represents the payout state of a driver earning.
type EarningStatus string

const (
	EarningStatusPending EarningStatus = "pending"
	EarningStatusPaidOut EarningStatus = "paid_out"
)

// DriverEarning is the payout record created when a paid delivery reaches
// the delivered status. At most one row exists per delivery; rows are never
// mutated after creation.
type DriverEarning struct {
	ID         string
	DriverID   string
	DeliveryID string
	Amount     float64 // gross, equals the delivery price
	Commission float64
	NetAmount  float64 // Amount - Commission
	Status     EarningStatus
	CreatedAt  time.Time
}
