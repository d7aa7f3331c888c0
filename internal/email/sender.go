package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdiagne/terangabus/internal/kafka"
)

// Sender composes the platform's emails and hands them to a Transport.
type Sender struct {
	transport   Transport
	frontendURL string
}

func NewSender(transport Transport, frontendURL string) *Sender {
	return &Sender{transport: transport, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// VerificationLink builds the link embedding the raw token. Only the
// hash of the token is stored server side.
func (s *Sender) VerificationLink(token string) string {
	return fmt.Sprintf("%s/verify-email/%s", s.frontendURL, token)
}

func (s *Sender) SendVerification(ctx context.Context, to, token string) error {
	link := s.VerificationLink(token)
	return s.transport.Send(ctx, Message{
		To:      to,
		Subject: "Confirmez votre adresse email",
		HTML:    fmt.Sprintf(`<p>Bienvenue sur Teranga Bus.</p><p><a href="%s">Confirmer mon adresse email</a></p><p>Ce lien expire dans 24 heures.</p>`, link),
		Text:    fmt.Sprintf("Bienvenue sur Teranga Bus. Confirmez votre adresse email : %s (lien valable 24 heures)", link),
	})
}

func (s *Sender) SendWelcome(ctx context.Context, to, name string) error {
	return s.transport.Send(ctx, Message{
		To:      to,
		Subject: "Bienvenue sur Teranga Bus",
		HTML:    fmt.Sprintf("<p>Bonjour %s,</p><p>Votre adresse email est confirmée. Bon voyage !</p>", name),
		Text:    fmt.Sprintf("Bonjour %s, votre adresse email est confirmée. Bon voyage !", name),
	})
}

// SendNotification turns a reservation event from the worker queue
// into the matching email.
func (s *Sender) SendNotification(ctx context.Context, event kafka.NotificationEvent) error {
	var subject, body string
	switch event.Type {
	case kafka.EventReservationCreated:
		subject = "Votre réservation " + event.Code
		body = fmt.Sprintf("Réservation %s enregistrée : %s le %s à %s, siège %d. Elle expire si elle n'est pas confirmée à temps.",
			event.Code, event.Route, event.Date, event.Time, event.SeatNumber)
	case kafka.EventReservationConfirmed:
		subject = "Réservation confirmée " + event.Code
		body = fmt.Sprintf("Votre réservation %s (%s, siège %d) est confirmée. Montant : %d FCFA.",
			event.Code, event.Route, event.SeatNumber, event.AmountCents/100)
	case kafka.EventReservationCancelled:
		subject = "Réservation annulée " + event.Code
		body = fmt.Sprintf("Votre réservation %s (%s, siège %d) a été annulée.", event.Code, event.Route, event.SeatNumber)
	case kafka.EventReservationExpired:
		subject = "Réservation expirée " + event.Code
		body = fmt.Sprintf("Votre réservation %s (%s, siège %d) a expiré. Le siège a été libéré.", event.Code, event.Route, event.SeatNumber)
	default:
		return fmt.Errorf("unknown notification event type %q", event.Type)
	}

	return s.transport.Send(ctx, Message{
		To:      event.Email,
		Subject: subject,
		HTML:    "<p>" + body + "</p>",
		Text:    body,
	})
}
