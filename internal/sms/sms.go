package sms

import (
	"context"

	"github.com/mdiagne/terangabus/config"
	"github.com/sirupsen/logrus"
)

// Sender delivers short notification texts. Only the console variant
// exists; the interface keeps a networked provider pluggable.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
	Enabled() bool
}

func NewSender(cfg config.SMSConfig, log *logrus.Logger) Sender {
	return &ConsoleSender{enabled: cfg.Enabled, log: log}
}

type ConsoleSender struct {
	enabled bool
	log     *logrus.Logger
}

func (s *ConsoleSender) Enabled() bool { return s.enabled }

func (s *ConsoleSender) Send(ctx context.Context, phone, text string) error {
	s.log.WithField("phone", phone).Info("console sms transport: " + text)
	return nil
}
