package verification

import (
	"context"
	"errors"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/sirupsen/logrus"
)

type VerifyStatus string

const (
	StatusVerified        VerifyStatus = "VERIFIED"
	StatusAlreadyVerified VerifyStatus = "ALREADY_VERIFIED"
	StatusInvalidToken    VerifyStatus = "INVALID_TOKEN"
)

// ErrRateLimited is returned by ResendVerification past the hourly
// attempt budget.
var ErrRateLimited = errors.New("too many verification requests")

// EmailSender is the slice of the mailer this service needs.
type EmailSender interface {
	SendVerification(ctx context.Context, to, token string) error
	SendWelcome(ctx context.Context, to, name string) error
}

// SMSSender mirrors internal/sms.Sender.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
	Enabled() bool
}

// AttemptCounter counts resend attempts inside a rolling window.
type AttemptCounter interface {
	CountResendAttempt(ctx context.Context, userID int64, window time.Duration) (int64, error)
}

// SendResult reports which notification channels were used. DebugToken
// is only populated outside production when the email send failed, so
// the flow can still be exercised without a mail provider.
type SendResult struct {
	Methods    []string
	DebugToken string
}

// ResendResult carries the enumeration-safe outcome: Security is true
// when no account matched and a generic success was returned.
type ResendResult struct {
	Security bool
	Methods  []string
}

type Service struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	emails     EmailSender
	sms        SMSSender
	attempts   AttemptCounter
	tokenTTL   time.Duration
	maxPerHour int64
	production bool
	log        *logrus.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	emails EmailSender,
	smsSender SMSSender,
	attempts AttemptCounter,
	tokenTTL time.Duration,
	maxPerHour int64,
	production bool,
	log *logrus.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		emails:     emails,
		sms:        smsSender,
		attempts:   attempts,
		tokenTTL:   tokenTTL,
		maxPerHour: maxPerHour,
		production: production,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendVerification issues a fresh token for the user: prior active
// tokens are deleted first so at most one is live, only the hash is
// stored, and the raw token leaves the process inside the email link.
// An SMS heads-up goes out when the user has a phone number and SMS is
// enabled; its failure never fails the operation.
func (s *Service) SendVerification(ctx context.Context, user *domain.User, ip, userAgent *string) (*SendResult, error) {
	raw, err := generateToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.DeleteActive(ctx, user.ID, domain.TokenTypeEmailVerify); err != nil {
		return nil, err
	}

	token := &domain.VerificationToken{
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		Type:      domain.TokenTypeEmailVerify,
		ExpiresAt: s.now().Add(s.tokenTTL),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := s.emails.SendVerification(ctx, user.Email, raw); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("verification email send failed")
		result := &SendResult{}
		if !s.production {
			result.DebugToken = raw
		}
		return result, err
	}

	result := &SendResult{Methods: []string{"email"}}
	if user.Phone != nil && s.sms != nil && s.sms.Enabled() {
		if err := s.sms.Send(ctx, *user.Phone, "Teranga Bus : un email de confirmation vient de vous etre envoye."); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("verification sms send failed")
		} else {
			result.Methods = append(result.Methods, "sms")
		}
	}
	return result, nil
}

// VerifyToken consumes a verification token. A token that exists but
// was already used reports ALREADY_VERIFIED; no match or an expired
// token reports INVALID_TOKEN. On success the user is flipped to
// verified, the token marked used, and a welcome email sent
// best-effort.
func (s *Service) VerifyToken(ctx context.Context, rawToken string, userID *int64) (VerifyStatus, error) {
	token, err := s.tokens.FindByHash(ctx, hashToken(rawToken), domain.TokenTypeEmailVerify, userID)
	if err != nil {
		return "", err
	}
	if token == nil {
		return StatusInvalidToken, nil
	}
	if token.Used() {
		return StatusAlreadyVerified, nil
	}
	now := s.now()
	if token.Expired(now) {
		return StatusInvalidToken, nil
	}

	if err := s.users.MarkEmailVerified(ctx, token.UserID, now); err != nil {
		return "", err
	}
	if err := s.tokens.MarkUsed(ctx, token.ID, now); err != nil {
		return "", err
	}

	if user, err := s.users.GetByID(ctx, token.UserID); err == nil {
		if err := s.emails.SendWelcome(ctx, user.Email, user.Name); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("welcome email send failed")
		}
	}

	return StatusVerified, nil
}

// ResendVerification re-sends the verification email. The response for
// an unknown address is indistinguishable from success so the endpoint
// cannot be used to enumerate accounts. Attempts beyond the hourly
// budget return ErrRateLimited.
func (s *Service) ResendVerification(ctx context.Context, email string, ip, userAgent *string) (*ResendResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ResendResult{Security: true}, nil
		}
		return nil, err
	}
	if user.EmailVerified {
		// nothing to resend, keep the generic response
		return &ResendResult{Security: true}, nil
	}

	count, err := s.attempts.CountResendAttempt(ctx, user.ID, time.Hour)
	if err != nil {
		return nil, err
	}
	if count > s.maxPerHour {
		return nil, ErrRateLimited
	}

	sent, err := s.SendVerification(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	return &ResendResult{Methods: sent.Methods}, nil
}
