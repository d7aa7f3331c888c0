package domain

import "time"

// Trip is a scheduled bus route instance.
type Trip struct {
	ID            int64
	DepartureCity string
	ArrivalCity   string
	DepartureDate time.Time
	DepartureTime string
	BusID         int64
	SeatsTotal    int
	PriceCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Route renders the human-readable "Dakar - Saint-Louis" form used in
// confirmation emails and reservation summaries.
func (t *Trip) Route() string {
	return t.DepartureCity + " - " + t.ArrivalCity
}
