package kafka

import "time"

// Notification event types consumed by the worker.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationExpired   = "reservation_expired"
)

// NotificationEvent is the envelope published on the notifications
// topic. The worker turns it into a confirmation email.
type NotificationEvent struct {
	Type        string     `json:"type"`
	Code        string     `json:"code"`
	TripID      int64      `json:"trajet_id"`
	Route       string     `json:"route"`
	Date        string     `json:"date"`
	Time        string     `json:"heure"`
	SeatNumber  int        `json:"siege_numero"`
	AmountCents int64      `json:"montant"`
	Email       string     `json:"email"`
	Status      string     `json:"statut"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
