package domain

import "time"

type TokenType string

const (
	TokenTypeEmailVerify   TokenType = "email_verify"
	TokenTypePasswordReset TokenType = "password_reset"
)

// VerificationToken is a one-time secret proving control of an email
// address. Only the SHA-256 hash of the token is ever stored.
type VerificationToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Type      TokenType
	ExpiresAt time.Time
	UsedAt    *time.Time
	IPAddress *string
	UserAgent *string
	CreatedAt time.Time
}

func (t *VerificationToken) Used() bool {
	return t.UsedAt != nil
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
