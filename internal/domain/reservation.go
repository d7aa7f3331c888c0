package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusDeleted   ReservationStatus = "deleted"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// Reservation is a seat hold on a trip. A row in pending or confirmed
// state with a future (or absent) expiry blocks its (trip, seat) pair.
type Reservation struct {
	ID            int64
	UserID        int64
	TripID        int64
	SeatNumber    int
	PaymentMethod string
	AmountCents   int64
	Code          string
	Status        ReservationStatus
	ExpiresAt     *time.Time
	TicketURL     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the reservation still blocks its seat at the
// given instant.
func (r *Reservation) Active(now time.Time) bool {
	if r.Status != ReservationStatusPending && r.Status != ReservationStatusConfirmed {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}
