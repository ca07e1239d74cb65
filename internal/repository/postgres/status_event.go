package postgres

import (
	"context"
	"database/sql"

	"courier/internal/domain"
)

// StatusEventRepository is a PostgreSQL implementation of repository.StatusEventRepository.
// The status_events table is append-only; this type deliberately has no
// update or delete methods.
type StatusEventRepository struct {
	q Querier
}

// NewStatusEventRepository creates a new PostgreSQL status event repository.
func NewStatusEventRepository(db *sql.DB) *StatusEventRepository {
	return &StatusEventRepository{q: db}
}

// NewStatusEventRepositoryWithTx creates a status event repository using a transaction.
func NewStatusEventRepositoryWithTx(tx *sql.Tx) *StatusEventRepository {
	return &StatusEventRepository{q: tx}
}

// Append inserts a new status event.
func (r *StatusEventRepository) Append(ctx context.Context, e *domain.StatusEvent) error {
	query := `
		INSERT INTO status_events (delivery_id, status, location, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	// location and notes are NOT NULL in the schema; absence is the empty
	// string, never NULL.
	return r.q.QueryRowContext(ctx, query,
		e.DeliveryID,
		e.Status,
		e.Location,
		e.Notes,
		e.CreatedAt,
	).Scan(&e.ID)
}

// ListByDelivery retrieves the events of a delivery in commit order.
func (r *StatusEventRepository) ListByDelivery(ctx context.Context, deliveryID string) ([]*domain.StatusEvent, error) {
	query := `
		SELECT id, delivery_id, status, location, notes, created_at
		FROM status_events
		WHERE delivery_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.StatusEvent
	for rows.Next() {
		var e domain.StatusEvent
		if err := rows.Scan(&e.ID, &e.DeliveryID, &e.Status, &e.Location, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
