package domain

import "time"

// StatusEvent is one immutable audit record of a delivery reaching a status.
// Rows are append-only; ordering by creation time matches the sequence of
// committed transitions.
type StatusEvent struct {
	ID         int64
	DeliveryID string
	Status     DeliveryStatus
	Location   string
	Notes      string
	CreatedAt  time.Time
}
