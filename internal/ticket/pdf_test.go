package ticket

import (
	"testing"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	res := &domain.Reservation{
		ID:            7,
		SeatNumber:    12,
		PaymentMethod: "mobile_money",
		AmountCents:   550000,
		Code:          "TB-7KQ2M9XA",
		Status:        domain.ReservationStatusConfirmed,
	}
	trip := &domain.Trip{
		DepartureCity: "Dakar",
		ArrivalCity:   "Saint-Louis",
		DepartureDate: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		DepartureTime: "08:30",
	}

	pdf, err := NewRenderer().Render(res, trip, "Moussa Diallo")
	assert.NoError(t, err)
	assert.True(t, len(pdf) > 500)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
