package validate

import "time"

// FieldError is a single per-field validation failure, aggregated by
// the composite validators.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var paymentMethods = map[string]bool{
	"carte":        true,
	"mobile_money": true,
	"paypal":       true,
	"especes":      true,
}

// PaymentMethod reports whether the wire value names a supported
// payment method.
func PaymentMethod(s string) bool {
	return paymentMethods[s]
}

type ReservationData struct {
	TripID        int64
	SeatNumber    int
	SeatsTotal    int
	PaymentMethod string
}

// Reservation aggregates per-field errors for a reservation request.
// An empty slice means the request is well formed.
func Reservation(in ReservationData) []FieldError {
	var errs []FieldError
	if !TripID(in.TripID) {
		errs = append(errs, FieldError{Field: "trajet_id", Message: "identifiant de trajet invalide"})
	}
	if !SeatNumber(in.SeatNumber, in.SeatsTotal) {
		errs = append(errs, FieldError{Field: "siege_numero", Message: "numero de siege hors limites"})
	}
	if !PaymentMethod(in.PaymentMethod) {
		errs = append(errs, FieldError{Field: "moyen_paiement", Message: "moyen de paiement non supporte"})
	}
	return errs
}

type PaymentData struct {
	CardNumber  string
	ExpMonth    int
	ExpYear     int
	CVC         string
	AmountCents int64
	PromoCode   string
}

// Payment aggregates per-field errors for card payment data.
func Payment(in PaymentData, now time.Time) []FieldError {
	var errs []FieldError
	if !CardNumber(in.CardNumber) {
		errs = append(errs, FieldError{Field: "card_number", Message: "numero de carte invalide"})
	}
	if !CardExpiry(in.ExpMonth, in.ExpYear, now) {
		errs = append(errs, FieldError{Field: "card_expiry", Message: "carte expiree"})
	}
	if !CVC(in.CVC, CardBrand(in.CardNumber)) {
		errs = append(errs, FieldError{Field: "cvc", Message: "cryptogramme invalide"})
	}
	if !Amount(in.AmountCents) {
		errs = append(errs, FieldError{Field: "montant", Message: "montant hors limites"})
	}
	if in.PromoCode != "" && !PromoCode(in.PromoCode) {
		errs = append(errs, FieldError{Field: "code_promo", Message: "code promo invalide"})
	}
	return errs
}
