package email

import (
	"context"
	"fmt"

	"github.com/mdiagne/terangabus/config"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Message is a fully composed outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers composed messages. The variant is resolved once
// at startup from the email config: a networked provider when an API
// key is present, otherwise the console transport that only logs.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// NewTransport selects the transport from configuration.
func NewTransport(cfg config.EmailConfig, log *logrus.Logger) Transport {
	if cfg.Provider == "resend" && cfg.APIKey != "" {
		return &ResendTransport{client: resend.NewClient(cfg.APIKey), from: cfg.From}
	}
	log.Warn("email provider not configured, falling back to console transport")
	return &ConsoleTransport{log: log}
}

type ResendTransport struct {
	client *resend.Client
	from   string
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	_, err := t.client.Emails.Send(&resend.SendEmailRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// ConsoleTransport logs messages instead of delivering them. Used in
// development and as the unconfigured fallback.
type ConsoleTransport struct {
	log *logrus.Logger
}

func (t *ConsoleTransport) Send(ctx context.Context, msg Message) error {
	t.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("console email transport: " + msg.Text)
	return nil
}
