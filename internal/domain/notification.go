package domain

import "time"

// NotificationType represents the kind of event a notification announces.
type NotificationType string

const (
	NotificationDeliveryCreated   NotificationType = "DELIVERY_CREATED"
	NotificationDeliveryClaimed   NotificationType = "DELIVERY_CLAIMED"
	NotificationStatusChanged     NotificationType = "STATUS_CHANGED"
	NotificationDeliveryCancelled NotificationType = "DELIVERY_CANCELLED"
	NotificationPaymentReceived   NotificationType = "PAYMENT_RECEIVED"
	NotificationEarningRecorded   NotificationType = "EARNING_RECORDED"
)

// Notification is a transient user-facing message. Losing one never affects
// delivery state; it is written outside the state-mutating transaction.
type Notification struct {
	ID          string
	UserID      string
	Title       string
	Message     string
	Type        NotificationType
	ReferenceID string // delivery id the notification refers to
	ReadAt      time.Time
	CreatedAt   time.Time
}
