package validate

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func newTestValidator() (*Validator, *test.Hook) {
	log, hook := test.NewNullLogger()
	return New(log), hook
}

func TestValidator_Email_Accepted(t *testing.T) {
	v, hook := newTestValidator()

	for _, email := range []string{
		"user@example.com",
		"prenom.nom@sous.domaine.sn",
		"u+tag@mail-host.org",
	} {
		assert.True(t, v.Email(email), email)
	}
	assert.Empty(t, hook.Entries, "accepted emails must not log security events")
}

func TestValidator_Email_RejectedLogsOnce(t *testing.T) {
	v, hook := newTestValidator()

	assert.False(t, v.Email("not-an-email"))
	assert.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "invalid_email", hook.LastEntry().Data["event"])

	hook.Reset()
	assert.False(t, v.Email("a@b"))
	assert.False(t, v.Email("@missing-local.com"))
	assert.False(t, v.Email("spaces in@mail.com"))
	assert.Len(t, hook.Entries, 3, "one event per rejection")
}

func TestValidator_Password(t *testing.T) {
	v, hook := newTestValidator()

	assert.True(t, v.Password("Str0ngEnough"))
	assert.Empty(t, hook.Entries)

	assert.False(t, v.Password("short1A"))
	assert.False(t, v.Password("alllowercase1"))
	assert.False(t, v.Password("ALLUPPERCASE1"))
	assert.False(t, v.Password("NoDigitsHere"))
	assert.Len(t, hook.Entries, 4)
}

func TestCardNumber_Luhn(t *testing.T) {
	assert.True(t, CardNumber("4539148803436467"))
	assert.True(t, CardNumber("4539 1488 0343 6467"))
	assert.True(t, CardNumber("378282246310005")) // amex test number

	// same length, checksum broken
	assert.False(t, CardNumber("4539148803436468"))
	assert.False(t, CardNumber("4539148803436460"))

	assert.False(t, CardNumber("123"))
	assert.False(t, CardNumber("45391488034364ab"))
}

func TestCardBrandAndCVC(t *testing.T) {
	assert.Equal(t, "visa", CardBrand("4539148803436467"))
	assert.Equal(t, "mastercard", CardBrand("5500005555555559"))
	assert.Equal(t, "amex", CardBrand("378282246310005"))
	assert.Equal(t, "", CardBrand("6011000990139424"))

	assert.True(t, CVC("123", "visa"))
	assert.False(t, CVC("1234", "visa"))
	assert.True(t, CVC("1234", "amex"))
	assert.False(t, CVC("123", "amex"))
	assert.False(t, CVC("12a", "visa"))
}

func TestCardExpiry(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, CardExpiry(8, 2026, now), "current month is still valid")
	assert.True(t, CardExpiry(1, 2027, now))
	assert.True(t, CardExpiry(12, 27, now), "two-digit years accepted")
	assert.False(t, CardExpiry(7, 2026, now))
	assert.False(t, CardExpiry(13, 2027, now))
	assert.False(t, CardExpiry(0, 2027, now))
}

func TestPhoneAndName(t *testing.T) {
	assert.True(t, Phone("+221771234567"))
	assert.True(t, Phone("771234567"))
	assert.True(t, Phone("77 123 45 67"))
	assert.False(t, Phone("77-12"))
	assert.False(t, Phone("telephone"))

	assert.True(t, Name("Moussa Diallo"))
	assert.True(t, Name("N'Diaye"))
	assert.False(t, Name("X"))
	assert.False(t, Name("1234"))
}

func TestPostalCode(t *testing.T) {
	assert.True(t, PostalCode("11000", "SN"))
	assert.True(t, PostalCode("75001", "FR"))
	assert.True(t, PostalCode("90210", "US"))
	assert.True(t, PostalCode("90210-1234", "US"))
	assert.True(t, PostalCode("EC1A 1BB", "GB"))
	assert.False(t, PostalCode("1100", "SN"))
	assert.False(t, PostalCode("ABCDE", "FR"))
	assert.False(t, PostalCode("!", "GB"))
}

func TestBirthDate(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

	assert.True(t, BirthDate(time.Date(2008, time.August, 28, 0, 0, 0, 0, time.UTC), 18, now))
	assert.False(t, BirthDate(time.Date(2008, time.August, 29, 0, 0, 0, 0, time.UTC), 18, now))
	assert.False(t, BirthDate(now.AddDate(1, 0, 0), 18, now), "future birth date")
}

func TestAmountURLPromoSeat(t *testing.T) {
	assert.True(t, Amount(5000))
	assert.False(t, Amount(0))
	assert.False(t, Amount(MaxAmountCents+1))

	assert.True(t, URL("https://terangabus.sn/billets"))
	assert.True(t, URL("http://localhost:3000"))
	assert.False(t, URL("ftp://files.example.com"))
	assert.False(t, URL("/relative/path"))

	assert.True(t, PromoCode("TABASKI26"))
	assert.False(t, PromoCode("ab"))
	assert.False(t, PromoCode("trop-long-code-promo"))

	assert.True(t, SeatNumber(1, 50))
	assert.True(t, SeatNumber(50, 50))
	assert.False(t, SeatNumber(0, 50))
	assert.False(t, SeatNumber(51, 50))
	assert.False(t, SeatNumber(10, 0))
}

func TestReservationComposite(t *testing.T) {
	errs := Reservation(ReservationData{TripID: 3, SeatNumber: 12, SeatsTotal: 50, PaymentMethod: "mobile_money"})
	assert.Empty(t, errs)

	errs = Reservation(ReservationData{TripID: 0, SeatNumber: 99, SeatsTotal: 50, PaymentMethod: "bitcoin"})
	assert.Len(t, errs, 3)
	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.Contains(t, fields, "trajet_id")
	assert.Contains(t, fields, "siege_numero")
	assert.Contains(t, fields, "moyen_paiement")
}

func TestPaymentComposite(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	errs := Payment(PaymentData{
		CardNumber:  "4539148803436467",
		ExpMonth:    12,
		ExpYear:     2027,
		CVC:         "123",
		AmountCents: 250000,
	}, now)
	assert.Empty(t, errs)

	errs = Payment(PaymentData{
		CardNumber:  "4539148803436468",
		ExpMonth:    1,
		ExpYear:     2020,
		CVC:         "12",
		AmountCents: 0,
		PromoCode:   "!!",
	}, now)
	assert.Len(t, errs, 5)
}
