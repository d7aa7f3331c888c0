package domain

import "time"

type UserStatus string

const (
	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
)

type User struct {
	ID              int64
	Name            string
	Email           string
	Phone           *string
	PasswordHash    string
	EmailVerified   bool
	EmailVerifiedAt *time.Time
	Status          UserStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
