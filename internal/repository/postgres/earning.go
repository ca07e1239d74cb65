package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"courier/internal/domain"
	"courier/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// EarningRepository is a PostgreSQL implementation of repository.EarningRepository.
type EarningRepository struct {
	q Querier
}

// NewEarningRepository creates a new PostgreSQL earning repository.
func NewEarningRepository(db *sql.DB) *EarningRepository {
	return &EarningRepository{q: db}
}

// NewEarningRepositoryWithTx creates an earning repository using a transaction.
func NewEarningRepositoryWithTx(tx *sql.Tx) *EarningRepository {
	return &EarningRepository{q: tx}
}

// Create persists a new earning. The driver_earnings table carries a unique
// constraint on delivery_id; a second insert for the same delivery surfaces
// as repository.ErrDuplicate.
func (r *EarningRepository) Create(ctx context.Context, e *domain.DriverEarning) error {
	query := `
		INSERT INTO driver_earnings (id, driver_id, delivery_id, amount, commission, net_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		e.ID,
		e.DriverID,
		e.DeliveryID,
		e.Amount,
		e.Commission,
		e.NetAmount,
		e.Status,
		e.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// ListByDriver retrieves a driver's earnings, newest first.
func (r *EarningRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverEarning, error) {
	query := `
		SELECT id, driver_id, delivery_id, amount, commission, net_amount, status, created_at
		FROM driver_earnings
		WHERE driver_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []*domain.DriverEarning
	for rows.Next() {
		var e domain.DriverEarning
		if err := rows.Scan(&e.ID, &e.DriverID, &e.DeliveryID, &e.Amount, &e.Commission, &e.NetAmount, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		earnings = append(earnings, &e)
	}
	return earnings, rows.Err()
}
