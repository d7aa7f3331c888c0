package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mdiagne/terangabus/internal/domain"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/verification"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByHash(ctx context.Context, hash string, tokenType domain.TokenType, userID *int64) (*domain.VerificationToken, error) {
	args := m.Called(ctx, hash, tokenType, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteActive(ctx context.Context, userID int64, tokenType domain.TokenType) error {
	args := m.Called(ctx, userID, tokenType)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendVerification(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func (m *MockEmailSender) SendWelcome(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}

type MockAttemptCounter struct {
	mock.Mock
}

func (m *MockAttemptCounter) CountResendAttempt(ctx context.Context, userID int64, window time.Duration) (int64, error) {
	args := m.Called(ctx, userID, window)
	return args.Get(0).(int64), args.Error(1)
}

func newAuthService(users *MockUserRepository, tokens *MockTokenRepository, emails *MockEmailSender) *Service {
	return newAuthServiceWithProduction(users, tokens, emails, true)
}

func newAuthServiceWithProduction(users *MockUserRepository, tokens *MockTokenRepository, emails *MockEmailSender, production bool) *Service {
	log, _ := test.NewNullLogger()
	verif := verification.NewService(users, tokens, emails, nil, &MockAttemptCounter{}, 24*time.Hour, 3, production, log)
	issuer := NewIssuer("test-secret", time.Hour)
	return NewService(users, verif, issuer, validate.New(log), log)
}

func validSignup() SignupInput {
	return SignupInput{Name: "Moussa Diallo", Email: "moussa@example.com", Password: "S3cret!pass"}
}

func TestAuthService_Signup_Success(t *testing.T) {
	users := &MockUserRepository{}
	tokens := &MockTokenRepository{}
	emails := &MockEmailSender{}
	service := newAuthService(users, tokens, emails)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "moussa@example.com").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).Return(nil).Once()
	tokens.On("DeleteActive", ctx, int64(7), domain.TokenTypeEmailVerify).Return(nil).Once()
	tokens.On("Create", ctx, mock.Anything).Return(nil).Once()
	emails.On("SendVerification", ctx, "moussa@example.com", mock.Anything).Return(nil).Once()

	user, sent, err := service.Signup(ctx, validSignup(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, domain.UserStatusPending, user.Status)
	assert.NotEqual(t, "S3cret!pass", user.PasswordHash)
	assert.Equal(t, []string{"email"}, sent.Methods)
	users.AssertExpectations(t)
}

func TestAuthService_Signup_InvalidInput(t *testing.T) {
	users := &MockUserRepository{}
	service := newAuthService(users, &MockTokenRepository{}, &MockEmailSender{})
	ctx := context.Background()

	testCases := []struct {
		name  string
		input SignupInput
	}{
		{"bad email", SignupInput{Name: "Moussa", Email: "not-an-email", Password: "S3cret!pass"}},
		{"short password", SignupInput{Name: "Moussa", Email: "moussa@example.com", Password: "abc"}},
		{"empty name", SignupInput{Name: "", Email: "moussa@example.com", Password: "S3cret!pass"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := service.Signup(ctx, tc.input, nil, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_VerifiedEmailTaken(t *testing.T) {
	users := &MockUserRepository{}
	service := newAuthService(users, &MockTokenRepository{}, &MockEmailSender{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "moussa@example.com").Return(&domain.User{ID: 7, Email: "moussa@example.com", EmailVerified: true}, nil).Once()

	_, _, err := service.Signup(ctx, validSignup(), nil, nil)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Signup_UnverifiedResends(t *testing.T) {
	users := &MockUserRepository{}
	tokens := &MockTokenRepository{}
	emails := &MockEmailSender{}
	service := newAuthService(users, tokens, emails)
	ctx := context.Background()

	existing := &domain.User{ID: 7, Email: "moussa@example.com", EmailVerified: false}
	users.On("GetByEmail", ctx, "moussa@example.com").Return(existing, nil).Once()
	tokens.On("DeleteActive", ctx, int64(7), domain.TokenTypeEmailVerify).Return(nil).Once()
	tokens.On("Create", ctx, mock.Anything).Return(nil).Once()
	emails.On("SendVerification", ctx, "moussa@example.com", mock.Anything).Return(nil).Once()

	user, sent, err := service.Signup(ctx, validSignup(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, []string{"email"}, sent.Methods)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_UnverifiedResendFailureIsNotFatal(t *testing.T) {
	users := &MockUserRepository{}
	tokens := &MockTokenRepository{}
	emails := &MockEmailSender{}
	service := newAuthServiceWithProduction(users, tokens, emails, false)
	ctx := context.Background()

	existing := &domain.User{ID: 7, Email: "moussa@example.com", EmailVerified: false}
	users.On("GetByEmail", ctx, "moussa@example.com").Return(existing, nil).Once()
	tokens.On("DeleteActive", ctx, int64(7), domain.TokenTypeEmailVerify).Return(nil).Once()
	tokens.On("Create", ctx, mock.Anything).Return(nil).Once()
	emails.On("SendVerification", ctx, "moussa@example.com", mock.Anything).Return(errors.New("resend 503")).Once()

	user, sent, err := service.Signup(ctx, validSignup(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NotNil(t, sent)
	assert.NotEmpty(t, sent.DebugToken)
}

func TestAuthService_Login_Success(t *testing.T) {
	users := &MockUserRepository{}
	service := newAuthService(users, &MockTokenRepository{}, &MockEmailSender{})
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("S3cret!pass"), bcrypt.MinCost)
	assert.NoError(t, err)
	users.On("GetByEmail", ctx, "moussa@example.com").Return(&domain.User{ID: 7, Email: "moussa@example.com", PasswordHash: string(hash)}, nil).Once()

	token, user, err := service.Login(ctx, "moussa@example.com", "S3cret!pass")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	claims, err := service.issuer.Parse(token)
	assert.NoError(t, err)
	userID, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := &MockUserRepository{}
	service := newAuthService(users, &MockTokenRepository{}, &MockEmailSender{})
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("S3cret!pass"), bcrypt.MinCost)
	users.On("GetByEmail", ctx, "moussa@example.com").Return(&domain.User{ID: 7, PasswordHash: string(hash)}, nil).Once()

	_, _, err := service.Login(ctx, "moussa@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	users := &MockUserRepository{}
	service := newAuthService(users, &MockTokenRepository{}, &MockEmailSender{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound).Once()

	_, _, err := service.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
