package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/repository"
)

// NotificationDispatcher delivers user-facing notifications outside the
// state-mutating transaction. Enqueue never blocks and never fails the
// caller; a full queue or a persistence error costs a notification, not a
// delivery-state change. A single worker drains the queue, so notifications
// for one delivery go out in the order their transitions committed.
type NotificationDispatcher struct {
	repo  repository.NotificationRepository
	queue chan domain.Notification

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewNotificationDispatcher creates a dispatcher with the given queue size.
// repo may be nil; notifications are then only logged.
func NewNotificationDispatcher(repo repository.NotificationRepository, buffer int) *NotificationDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationDispatcher{
		repo:  repo,
		queue: make(chan domain.Notification, buffer),
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (d *NotificationDispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Stop closes the queue and waits for the worker to drain it.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

func (d *NotificationDispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *NotificationDispatcher) deliver(n domain.Notification) {
	if d.repo != nil {
		// The dispatcher outlives request contexts; use a bounded one.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.repo.Create(ctx, &n); err != nil {
			log.Printf("[NOTIFICATION] persist failed: type=%s user=%s err=%v", n.Type, n.UserID, err)
		}
		cancel()
	}

	log.Printf("[NOTIFICATION] type=%s user=%s ref=%s title=%q", n.Type, n.UserID, n.ReferenceID, n.Title)
}

// Enqueue submits a notification for asynchronous delivery. Drops and logs
// when the queue is full.
func (d *NotificationDispatcher) Enqueue(n domain.Notification) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	select {
	case d.queue <- n:
	default:
		log.Printf("[NOTIFICATION] queue full, dropped: type=%s user=%s", n.Type, n.UserID)
	}
}

// NotifyDeliveryClaimed tells the client a driver accepted their delivery.
func (d *NotificationDispatcher) NotifyDeliveryClaimed(delivery *domain.Delivery, driver *domain.User) {
	d.Enqueue(domain.Notification{
		UserID:      delivery.ClientID,
		Type:        domain.NotificationDeliveryClaimed,
		Title:       "Driver Assigned",
		Message:     fmt.Sprintf("Driver %s has accepted delivery %s", driver.Name, delivery.TrackingNumber),
		ReferenceID: delivery.ID,
	})
}

// NotifyStatusChanged tells the client their delivery moved forward.
func (d *NotificationDispatcher) NotifyStatusChanged(delivery *domain.Delivery, status domain.DeliveryStatus) {
	d.Enqueue(domain.Notification{
		UserID:      delivery.ClientID,
		Type:        domain.NotificationStatusChanged,
		Title:       "Delivery Update",
		Message:     fmt.Sprintf("Delivery %s is now %s", delivery.TrackingNumber, status),
		ReferenceID: delivery.ID,
	})
}

// NotifyDeliveryCancelled tells the assigned driver the delivery was cancelled.
func (d *NotificationDispatcher) NotifyDeliveryCancelled(delivery *domain.Delivery) {
	if delivery.DriverID == "" {
		return
	}
	d.Enqueue(domain.Notification{
		UserID:      delivery.DriverID,
		Type:        domain.NotificationDeliveryCancelled,
		Title:       "Delivery Cancelled",
		Message:     fmt.Sprintf("Delivery %s was cancelled by the client", delivery.TrackingNumber),
		ReferenceID: delivery.ID,
	})
}

// NotifyPaymentReceived tells the client their payment was captured.
func (d *NotificationDispatcher) NotifyPaymentReceived(delivery *domain.Delivery) {
	d.Enqueue(domain.Notification{
		UserID:      delivery.ClientID,
		Type:        domain.NotificationPaymentReceived,
		Title:       "Payment Received",
		Message:     fmt.Sprintf("Payment of $%.2f received for delivery %s", delivery.Price, delivery.TrackingNumber),
		ReferenceID: delivery.ID,
	})
}

// NotifyEarningRecorded tells the driver their payout was recorded.
func (d *NotificationDispatcher) NotifyEarningRecorded(earning *domain.DriverEarning) {
	d.Enqueue(domain.Notification{
		UserID:      earning.DriverID,
		Type:        domain.NotificationEarningRecorded,
		Title:       "Earning Recorded",
		Message:     fmt.Sprintf("You earned $%.2f after commission", earning.NetAmount),
		ReferenceID: earning.DeliveryID,
	})
}
