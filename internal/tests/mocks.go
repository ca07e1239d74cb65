package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"courier/internal/domain"
	"courier/internal/repository"
)

// ──────────────────────────────────────────────
// IN-MEMORY STORE
// ──────────────────────────────────────────────

// MemoryStore is an in-memory repository.Store. Transactions serialize on
// a mutex the way concurrent row writers serialize on row locks: Begin
// blocks until the open transaction commits or rolls back, and Rollback
// restores the snapshot taken at Begin. A loser of a claim race therefore
// observes the winner's committed write, exactly as against PostgreSQL.
type MemoryStore struct {
	txMu sync.Mutex   // serializes transactions
	mu   sync.RWMutex // guards the maps below

	deliveries map[string]*domain.Delivery
	events     []*domain.StatusEvent
	earnings   map[string]*domain.DriverEarning // keyed by delivery ID
	nextEvent  int64

	deliveryRepo *MemoryDeliveryRepository
	eventRepo    *MemoryStatusEventRepository
	earningRepo  *MemoryEarningRepository

	// Counters for verification
	BeginCallCount    int32
	CommitCallCount   int32
	RollbackCallCount int32

	// Error injection
	BeginError  error
	CommitError error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		deliveries: make(map[string]*domain.Delivery),
		earnings:   make(map[string]*domain.DriverEarning),
	}
	s.deliveryRepo = &MemoryDeliveryRepository{store: s}
	s.eventRepo = &MemoryStatusEventRepository{store: s}
	s.earningRepo = &MemoryEarningRepository{store: s}
	return s
}

// DeliveryRepo returns the non-transactional delivery repository view.
func (s *MemoryStore) DeliveryRepo() *MemoryDeliveryRepository { return s.deliveryRepo }

// StatusEventRepo returns the non-transactional status event view.
func (s *MemoryStore) StatusEventRepo() *MemoryStatusEventRepository { return s.eventRepo }

// EarningRepo returns the non-transactional earning view.
func (s *MemoryStore) EarningRepo() *MemoryEarningRepository { return s.earningRepo }

// AddDelivery seeds a delivery.
func (s *MemoryStore) AddDelivery(d *domain.Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyD := *d
	s.deliveries[d.ID] = &copyD
}

// GetDelivery returns a delivery for test assertions.
func (s *MemoryStore) GetDelivery(id string) *domain.Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil
	}
	copyD := *d
	return &copyD
}

// EventCount returns the number of recorded status events for a delivery.
func (s *MemoryStore) EventCount(deliveryID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.events {
		if e.DeliveryID == deliveryID {
			n++
		}
	}
	return n
}

// EarningFor returns the earning recorded for a delivery, or nil.
func (s *MemoryStore) EarningFor(deliveryID string) *domain.DriverEarning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.earnings[deliveryID]
	if !ok {
		return nil
	}
	copyE := *e
	return &copyE
}

func (s *MemoryStore) Begin(ctx context.Context) (repository.Tx, error) {
	atomic.AddInt32(&s.BeginCallCount, 1)
	if s.BeginError != nil {
		return nil, s.BeginError
	}
	s.txMu.Lock()
	return &memoryTx{store: s, snapshot: s.snapshot()}, nil
}

// snapshot deep-copies the store state so Rollback can restore it.
func (s *MemoryStore) snapshot() *storeState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &storeState{
		deliveries: make(map[string]*domain.Delivery, len(s.deliveries)),
		events:     make([]*domain.StatusEvent, len(s.events)),
		earnings:   make(map[string]*domain.DriverEarning, len(s.earnings)),
		nextEvent:  s.nextEvent,
	}
	for id, d := range s.deliveries {
		copyD := *d
		state.deliveries[id] = &copyD
	}
	for i, e := range s.events {
		copyE := *e
		state.events[i] = &copyE
	}
	for id, e := range s.earnings {
		copyE := *e
		state.earnings[id] = &copyE
	}
	return state
}

func (s *MemoryStore) restore(state *storeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = state.deliveries
	s.events = state.events
	s.earnings = state.earnings
	s.nextEvent = state.nextEvent
}

type storeState struct {
	deliveries map[string]*domain.Delivery
	events     []*domain.StatusEvent
	earnings   map[string]*domain.DriverEarning
	nextEvent  int64
}

// memoryTx is a transaction over a MemoryStore.
type memoryTx struct {
	store    *MemoryStore
	snapshot *storeState
	done     bool
}

func (t *memoryTx) Deliveries() repository.DeliveryRepository      { return t.store.deliveryRepo }
func (t *memoryTx) StatusEvents() repository.StatusEventRepository { return t.store.eventRepo }
func (t *memoryTx) Earnings() repository.EarningRepository         { return t.store.earningRepo }

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	atomic.AddInt32(&t.store.CommitCallCount, 1)
	if t.store.CommitError != nil {
		t.store.restore(t.snapshot)
		t.store.txMu.Unlock()
		return t.store.CommitError
	}
	t.store.txMu.Unlock()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	atomic.AddInt32(&t.store.RollbackCallCount, 1)
	t.store.restore(t.snapshot)
	t.store.txMu.Unlock()
	return nil
}

// ──────────────────────────────────────────────
// DELIVERY REPOSITORY
// ──────────────────────────────────────────────

// MemoryDeliveryRepository implements repository.DeliveryRepository over a
// MemoryStore. The same instance serves transactional and plain callers.
type MemoryDeliveryRepository struct {
	store *MemoryStore

	// Counters for verification
	ClaimCallCount   int32
	AdvanceCallCount int32

	// Error injection
	CreateError error
	ClaimError  error
}

func (m *MemoryDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	copyD := *delivery
	m.store.deliveries[delivery.ID] = &copyD
	return nil
}

func (m *MemoryDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	d, ok := m.store.deliveries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copyD := *d
	return &copyD, nil
}

func (m *MemoryDeliveryRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, d := range m.store.deliveries {
		if d.TrackingNumber == trackingNumber {
			copyD := *d
			return &copyD, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemoryDeliveryRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Delivery, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.store.deliveries {
		if d.ClientID == clientID {
			copyD := *d
			result = append(result, &copyD)
		}
	}
	return result, nil
}

func (m *MemoryDeliveryRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.store.deliveries {
		if d.DriverID == driverID {
			copyD := *d
			result = append(result, &copyD)
		}
	}
	return result, nil
}

func (m *MemoryDeliveryRepository) ListPending(ctx context.Context) ([]*domain.Delivery, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.store.deliveries {
		if d.Status == domain.DeliveryStatusPending && d.DriverID == "" {
			copyD := *d
			result = append(result, &copyD)
		}
	}
	return result, nil
}

// Claim mirrors the conditional UPDATE: it mutates the row only when the
// delivery is still pending and unassigned, and reports whether it did.
func (m *MemoryDeliveryRepository) Claim(ctx context.Context, deliveryID, driverID string) (bool, error) {
	atomic.AddInt32(&m.ClaimCallCount, 1)
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.deliveries[deliveryID]
	if !ok {
		return false, nil
	}
	if d.Status != domain.DeliveryStatusPending || d.DriverID != "" {
		return false, nil
	}
	d.DriverID = driverID
	d.Status = domain.DeliveryStatusAccepted
	return true, nil
}

// AdvanceStatus mirrors the compare-and-set UPDATE on status.
func (m *MemoryDeliveryRepository) AdvanceStatus(ctx context.Context, deliveryID string, from, to domain.DeliveryStatus) (bool, error) {
	atomic.AddInt32(&m.AdvanceCallCount, 1)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.deliveries[deliveryID]
	if !ok {
		return false, nil
	}
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

func (m *MemoryDeliveryRepository) UpdatePayment(ctx context.Context, deliveryID string, status domain.PaymentStatus, reference string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.deliveries[deliveryID]
	if !ok {
		return repository.ErrNotFound
	}
	d.PaymentStatus = status
	d.PaymentReference = reference
	return nil
}

// ──────────────────────────────────────────────
// STATUS EVENT REPOSITORY
// ──────────────────────────────────────────────

// MemoryStatusEventRepository implements repository.StatusEventRepository
// over a MemoryStore.
type MemoryStatusEventRepository struct {
	store *MemoryStore

	// Error injection
	AppendError error
}

func (m *MemoryStatusEventRepository) Append(ctx context.Context, event *domain.StatusEvent) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.nextEvent++
	event.ID = m.store.nextEvent
	copyE := *event
	m.store.events = append(m.store.events, &copyE)
	return nil
}

func (m *MemoryStatusEventRepository) ListByDelivery(ctx context.Context, deliveryID string) ([]*domain.StatusEvent, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.StatusEvent, 0)
	for _, e := range m.store.events {
		if e.DeliveryID == deliveryID {
			copyE := *e
			result = append(result, &copyE)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// EARNING REPOSITORY
// ──────────────────────────────────────────────

// MemoryEarningRepository implements repository.EarningRepository over a
// MemoryStore, including the per-delivery uniqueness the real schema
// enforces with a UNIQUE constraint.
type MemoryEarningRepository struct {
	store *MemoryStore

	// Counters for verification
	CreateCallCount int32
}

func (m *MemoryEarningRepository) Create(ctx context.Context, earning *domain.DriverEarning) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, exists := m.store.earnings[earning.DeliveryID]; exists {
		return repository.ErrDuplicate
	}
	copyE := *earning
	m.store.earnings[earning.DeliveryID] = &copyE
	return nil
}

func (m *MemoryEarningRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverEarning, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	result := make([]*domain.DriverEarning, 0)
	for _, e := range m.store.earnings {
		if e.DriverID == driverID {
			copyE := *e
			result = append(result, &copyE)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a standalone mock of
// repository.NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
}

// NewMockNotificationRepository creates an empty mock.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copyN := *notification
	m.notifications = append(m.notifications, &copyN)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			copyN := *n
			result = append(result, &copyN)
		}
	}
	return result, nil
}

// All returns every stored notification for test assertions.
func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}
