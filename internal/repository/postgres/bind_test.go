package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"courier/internal/domain"
)

// The deliveries and status_events tables declare their text columns
// NOT NULL DEFAULT '', so an absent value must reach the driver as the
// empty string. Binding NULL there fails with SQLSTATE 23502 even though
// the column has a default. These tests run the write paths against a
// stub driver and assert the argument values exactly as PostgreSQL would
// receive them. Only driver_id and scheduled_at are nullable.

// ──────────────────────────────────────────────
// Recording driver
// ──────────────────────────────────────────────

type capturedCall struct {
	query string
	args  []driver.Value
}

type recorderConn struct {
	calls []capturedCall
}

func (c *recorderConn) record(query string, args []driver.NamedValue) {
	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	c.calls = append(c.calls, capturedCall{query: query, args: values})
}

func (c *recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("recorderConn: prepare not supported")
}

func (c *recorderConn) Close() error { return nil }

func (c *recorderConn) Begin() (driver.Tx, error) {
	return nil, errors.New("recorderConn: transactions not supported")
}

func (c *recorderConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.record(query, args)
	return driver.RowsAffected(1), nil
}

func (c *recorderConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.record(query, args)
	return &singleIDRows{}, nil
}

// singleIDRows satisfies a RETURNING id scan with a single row.
type singleIDRows struct{ done bool }

func (r *singleIDRows) Columns() []string { return []string{"id"} }
func (r *singleIDRows) Close() error      { return nil }

func (r *singleIDRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = int64(1)
	return nil
}

type recorderDriver struct{ conn *recorderConn }

func (d *recorderDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

var recorderSeq int64

func newRecordedDB(t *testing.T) (*sql.DB, *recorderConn) {
	t.Helper()

	conn := &recorderConn{}
	name := fmt.Sprintf("recorder-%d", atomic.AddInt64(&recorderSeq, 1))
	sql.Register(name, &recorderDriver{conn: conn})

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open recorder db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, conn
}

func lastCall(t *testing.T, conn *recorderConn) capturedCall {
	t.Helper()
	if len(conn.calls) == 0 {
		t.Fatal("no statement reached the driver")
	}
	return conn.calls[len(conn.calls)-1]
}

// ──────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────

func TestStatusEventAppend_BindsEmptyStringsNotNull(t *testing.T) {
	db, conn := newRecordedDB(t)
	repo := NewStatusEventRepository(db)

	e := &domain.StatusEvent{
		DeliveryID: "d-1",
		Status:     domain.DeliveryStatusAccepted,
		CreatedAt:  time.Now(),
	}
	if err := repo.Append(context.Background(), e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("ID = %d, want 1 from RETURNING", e.ID)
	}

	call := lastCall(t, conn)
	if len(call.args) != 5 {
		t.Fatalf("bound %d args, want 5", len(call.args))
	}
	if got, ok := call.args[2].(string); !ok || got != "" {
		t.Errorf("location bound as %#v, want empty string", call.args[2])
	}
	if got, ok := call.args[3].(string); !ok || got != "" {
		t.Errorf("notes bound as %#v, want empty string", call.args[3])
	}
}

func TestDeliveryCreate_BindsOnlyNullableColumnsAsNull(t *testing.T) {
	db, conn := newRecordedDB(t)
	repo := NewDeliveryRepository(db)

	d := &domain.Delivery{
		ID:                   "d-1",
		TrackingNumber:       "TRK-0000000001",
		ClientID:             "c-1",
		PickupAddress:        "1 First St",
		PickupContactName:    "Ana",
		PickupContactPhone:   "+111",
		DeliveryAddress:      "2 Second St",
		DeliveryContactName:  "Ben",
		DeliveryContactPhone: "+222",
		PackageSize:          domain.PackageSizeMedium,
		PackageWeight:        3,
		DeliveryType:         domain.DeliveryTypeStandard,
		Price:                22.00,
		PaymentStatus:        domain.PaymentStatusPending,
		PaymentMethod:        "card",
		Status:               domain.DeliveryStatusPending,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("Create: %v", err)
	}

	call := lastCall(t, conn)
	if len(call.args) != 23 {
		t.Fatalf("bound %d args, want 23", len(call.args))
	}
	if call.args[3] != nil {
		t.Errorf("unassigned driver_id bound as %#v, want NULL", call.args[3])
	}
	if call.args[14] != nil {
		t.Errorf("unscheduled scheduled_at bound as %#v, want NULL", call.args[14])
	}
	if got, ok := call.args[19].(string); !ok || got != "" {
		t.Errorf("payment_reference bound as %#v, want empty string", call.args[19])
	}
}

func TestDeliveryUpdatePayment_BindsEmptyReferenceAsString(t *testing.T) {
	db, conn := newRecordedDB(t)
	repo := NewDeliveryRepository(db)

	err := repo.UpdatePayment(context.Background(), "d-1", domain.PaymentStatusFailed, "")
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}

	call := lastCall(t, conn)
	if len(call.args) != 3 {
		t.Fatalf("bound %d args, want 3", len(call.args))
	}
	if got, ok := call.args[1].(string); !ok || got != "" {
		t.Errorf("payment_reference bound as %#v, want empty string", call.args[1])
	}
}
