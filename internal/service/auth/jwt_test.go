package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(7, "moussa@example.com", time.Now())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "moussa@example.com", claims.Email)

	userID, err := claims.UserID()
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestIssuer_WrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Hour).Issue(7, "x@example.com", time.Now())
	assert.NoError(t, err)

	_, err = NewIssuer("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestIssuer_ExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Issue(7, "x@example.com", time.Now().Add(-time.Hour))
	assert.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}
