package auth

import (
	"context"
	"testing"
	"time"

	repomemory "cinescore/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController() *Controller {
	repo := repomemory.New()
	return New(repo, func() []byte { return []byte("test-secret") }, time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	u, err := c.Register(ctx, "login@test.com", "securepass")
	require.NoError(t, err)
	assert.Equal(t, "login@test.com", u.Email)
	assert.NotEqual(t, "securepass", u.PasswordHash)

	token, err := c.Login(ctx, "login@test.com", "securepass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userId, err := c.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.Id, userId)
}

func TestRegisterDuplicate(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	_, err := c.Register(ctx, "duplicate@example.com", "123")
	require.NoError(t, err)
	_, err = c.Register(ctx, "duplicate@example.com", "123")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginFailures(t *testing.T) {
	c := newTestController()
	ctx := context.Background()
	_, err := c.Register(ctx, "fail@test.com", "securepass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "fail@test.com", password: "wrongpassword"},
		{name: "unknown user", email: "ghost@test.com", password: "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrBadCredentials)
		})
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "FAKE_TOKEN_123"},
		{
			// Signed with a different secret.
			name:  "bad signature",
			token: mustToken(t, []byte("other-secret")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func mustToken(t *testing.T, secret []byte) string {
	t.Helper()
	other := New(repomemory.New(), func() []byte { return secret }, time.Hour, zap.NewNop())
	_, err := other.Register(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	token, err := other.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	return token
}

func TestWhoamiMissingUser(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	// A valid token can outlive its user.
	_, err := c.Whoami(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err := c.Register(ctx, "protect@test.com", "123")
	require.NoError(t, err)
	got, err := c.Whoami(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "protect@test.com", got.Email)
}
