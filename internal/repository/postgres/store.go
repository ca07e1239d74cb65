package postgres

import (
	"context"
	"database/sql"

	"courier/internal/repository"
)

// Store is a PostgreSQL implementation of repository.Store. Each Begin opens
// a real database transaction; the repositories handed out by the resulting
// Tx all share it, so a delivery update, its status event and an eventual
// earning commit or roll back together.
type Store struct {
	db *sql.DB
}

// NewStore creates a new PostgreSQL store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens a new transaction.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Deliveries() repository.DeliveryRepository {
	return NewDeliveryRepositoryWithTx(t.tx)
}

func (t *storeTx) StatusEvents() repository.StatusEventRepository {
	return NewStatusEventRepositoryWithTx(t.tx)
}

func (t *storeTx) Earnings() repository.EarningRepository {
	return NewEarningRepositoryWithTx(t.tx)
}

func (t *storeTx) Commit() error {
	return t.tx.Commit()
}

func (t *storeTx) Rollback() error {
	return t.tx.Rollback()
}

var _ repository.Store = (*Store)(nil)
