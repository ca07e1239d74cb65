package postgres

import (
	"context"
	"database/sql"
	"errors"

	"courier/internal/domain"
	"courier/internal/repository"
)

const deliveryColumns = `
	id, tracking_number, client_id, driver_id,
	pickup_address, pickup_contact_name, pickup_contact_phone,
	delivery_address, delivery_contact_name, delivery_contact_phone,
	package_size, package_weight, fragile, delivery_type, scheduled_at, instructions,
	price, payment_status, payment_method, payment_reference,
	status, created_at, updated_at`

// DeliveryRepository is a PostgreSQL implementation of repository.DeliveryRepository.
type DeliveryRepository struct {
	q Querier
}

// NewDeliveryRepository creates a new PostgreSQL delivery repository.
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{q: db}
}

// NewDeliveryRepositoryWithTx creates a delivery repository using a transaction.
func NewDeliveryRepositoryWithTx(tx *sql.Tx) *DeliveryRepository {
	return &DeliveryRepository{q: tx}
}

// Create persists a new delivery.
func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	var driverID sql.NullString
	if d.DriverID != "" {
		driverID = sql.NullString{String: d.DriverID, Valid: true}
	}

	var scheduledAt sql.NullTime
	if !d.ScheduledAt.IsZero() {
		scheduledAt = sql.NullTime{Time: d.ScheduledAt, Valid: true}
	}

	// driver_id and scheduled_at are nullable columns; payment_reference is
	// NOT NULL and stores the empty string until a charge succeeds.
	_, err := r.q.ExecContext(ctx, query,
		d.ID,
		d.TrackingNumber,
		d.ClientID,
		driverID,
		d.PickupAddress,
		d.PickupContactName,
		d.PickupContactPhone,
		d.DeliveryAddress,
		d.DeliveryContactName,
		d.DeliveryContactPhone,
		d.PackageSize,
		d.PackageWeight,
		d.Fragile,
		d.DeliveryType,
		scheduledAt,
		d.Instructions,
		d.Price,
		d.PaymentStatus,
		d.PaymentMethod,
		d.PaymentReference,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	)

	return err
}

// GetByID retrieves a delivery by ID.
func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByTrackingNumber retrieves a delivery by its tracking number.
func (r *DeliveryRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE tracking_number = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, trackingNumber))
}

// ListByClient retrieves deliveries owned by a client, newest first.
func (r *DeliveryRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE client_id = $1 ORDER BY created_at DESC LIMIT 100`
	return r.list(ctx, query, clientID)
}

// ListByDriver retrieves deliveries assigned to a driver, newest first.
func (r *DeliveryRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE driver_id = $1 ORDER BY created_at DESC LIMIT 100`
	return r.list(ctx, query, driverID)
}

// ListPending retrieves unclaimed deliveries, oldest first so drivers see
// the longest-waiting requests at the top.
func (r *DeliveryRepository) ListPending(ctx context.Context) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE status = 'pending' AND driver_id IS NULL ORDER BY created_at ASC LIMIT 100`
	return r.list(ctx, query)
}

// Claim assigns a driver to a delivery with a single conditional update.
// The predicate closes the read-then-write gap: two concurrent claims can
// never both see one row affected.
func (r *DeliveryRepository) Claim(ctx context.Context, deliveryID, driverID string) (bool, error) {
	query := `
		UPDATE deliveries
		SET driver_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND driver_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query,
		driverID,
		domain.DeliveryStatusAccepted,
		deliveryID,
		domain.DeliveryStatusPending,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// AdvanceStatus moves a delivery from one status to another iff its current
// status still equals from.
func (r *DeliveryRepository) AdvanceStatus(ctx context.Context, deliveryID string, from, to domain.DeliveryStatus) (bool, error) {
	query := `
		UPDATE deliveries
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, to, deliveryID, from)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// UpdatePayment records a payment outcome on a delivery.
func (r *DeliveryRepository) UpdatePayment(ctx context.Context, deliveryID string, status domain.PaymentStatus, reference string) error {
	query := `
		UPDATE deliveries
		SET payment_status = $1, payment_reference = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.ExecContext(ctx, query, status, reference, deliveryID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DeliveryRepository) scanOne(row rowScanner) (*domain.Delivery, error) {
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DeliveryRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Delivery, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var d domain.Delivery
	var driverID sql.NullString
	var scheduledAt sql.NullTime

	err := row.Scan(
		&d.ID,
		&d.TrackingNumber,
		&d.ClientID,
		&driverID,
		&d.PickupAddress,
		&d.PickupContactName,
		&d.PickupContactPhone,
		&d.DeliveryAddress,
		&d.DeliveryContactName,
		&d.DeliveryContactPhone,
		&d.PackageSize,
		&d.PackageWeight,
		&d.Fragile,
		&d.DeliveryType,
		&scheduledAt,
		&d.Instructions,
		&d.Price,
		&d.PaymentStatus,
		&d.PaymentMethod,
		&d.PaymentReference,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		d.DriverID = driverID.String
	}
	if scheduledAt.Valid {
		d.ScheduledAt = scheduledAt.Time
	}

	return &d, nil
}
