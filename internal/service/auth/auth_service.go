package auth

import (
	"context"
	"errors"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/verification"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid signup data")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummyHash keeps the bcrypt comparison on the unknown-email path so
// login timing does not reveal whether an account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type SignupInput struct {
	Name     string  `json:"nom"`
	Email    string  `json:"email"`
	Phone    *string `json:"telephone"`
	Password string  `json:"password"`
}

type Service struct {
	users        repository.UserRepository
	verification *verification.Service
	issuer       *Issuer
	validator    *validate.Validator
	log          *logrus.Logger
}

func NewService(users repository.UserRepository, verif *verification.Service, issuer *Issuer, validator *validate.Validator, log *logrus.Logger) *Service {
	return &Service{users: users, verification: verif, issuer: issuer, validator: validator, log: log}
}

// Signup creates a pending account and sends the verification email.
// Signing up again with an unverified address re-sends the email
// instead of failing.
func (s *Service) Signup(ctx context.Context, input SignupInput, ip, userAgent *string) (*domain.User, *verification.SendResult, error) {
	if !s.validator.Email(input.Email) || !s.validator.Password(input.Password) || !validate.Name(input.Name) {
		return nil, nil, ErrInvalidInput
	}
	if input.Phone != nil && !validate.Phone(*input.Phone) {
		return nil, nil, ErrInvalidInput
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}
	if existing != nil {
		if existing.EmailVerified {
			return nil, nil, ErrEmailTaken
		}
		sent, err := s.verification.SendVerification(ctx, existing, ip, userAgent)
		if err != nil {
			// account exists, verification can be re-sent later
			s.log.WithError(err).WithField("user_id", existing.ID).Error("signup verification send failed")
		}
		return existing, sent, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Status:       domain.UserStatusPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	sent, err := s.verification.SendVerification(ctx, user, ip, userAgent)
	if err != nil {
		// account exists, verification can be re-sent later
		s.log.WithError(err).WithField("user_id", user.ID).Error("signup verification send failed")
	}
	return user, sent, nil
}

// Login checks the password and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Email, time.Now())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
