package repository

import "context"

// Store opens transactions spanning the delivery, status event and earning
// repositories. Every state-mutating operation on a delivery runs inside
// exactly one Tx so a failure after a partial write rolls back completely.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transactional scope over the write-side repositories. The
// repositories returned by a Tx share its transaction; Commit makes all
// their writes durable, Rollback discards them.
type Tx interface {
	Deliveries() DeliveryRepository
	StatusEvents() StatusEventRepository
	Earnings() EarningRepository

	Commit() error
	Rollback() error
}
