package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodcatalog/internal/repositories"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repositories.NewUserRepository(openTestDB(t)), "test-secret", time.Hour, nil)
}

func TestAuthServiceLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	created, err := svc.EnsureAdmin(ctx, "admin", "secret123", "+998901234567")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "other-password", "")
	require.NoError(t, err)
	assert.False(t, created, "existing admin is left alone")

	for _, creds := range []LoginInput{
		{Login: "admin", Password: "wrong"},
		{Login: "nobody", Password: "secret123"},
	} {
		_, _, err := svc.Login(ctx, creds)
		assert.Equal(t, []string{"The provided credentials are incorrect."}, validationFields(t, err)["login"])
	}

	user, first, err := svc.Login(ctx, LoginInput{Login: "admin", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	_, second, err := svc.Login(ctx, LoginInput{Login: "admin", Password: "secret123"})
	require.NoError(t, err)

	authed, token, err := svc.Authenticate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.NotNil(t, token.LastUsedAt)

	require.NoError(t, svc.Logout(ctx, token))

	_, _, err = svc.Authenticate(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthenticated, "logged out token is revoked")

	_, _, err = svc.Authenticate(ctx, second)
	assert.NoError(t, err, "other sessions survive logout")

	_, _, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, third, err := svc.Login(ctx, LoginInput{Login: "admin", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, svc.LogoutAll(ctx, user))
	for _, raw := range []string{second, third} {
		_, _, err = svc.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated, "logout-all revokes every session")
	}
	assert.ErrorIs(t, svc.LogoutAll(ctx, nil), ErrUnauthenticated)
}

func TestAuthServiceExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.EnsureAdmin(ctx, "admin", "secret123", "")
	require.NoError(t, err)

	_, raw, err := svc.Login(ctx, LoginInput{Login: "admin", Password: "secret123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = svc.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	testCases := []struct {
		name          string
		input         RegisterInput
		expectedField string
	}{
		{name: "missing login", input: RegisterInput{Password: "secret123", PasswordConfirmation: "secret123"}, expectedField: "login"},
		{name: "short password", input: RegisterInput{Login: "x", Password: "short", PasswordConfirmation: "short"}, expectedField: "password"},
		{name: "confirmation mismatch", input: RegisterInput{Login: "x", Password: "secret123", PasswordConfirmation: "secret124"}, expectedField: "password_confirmation"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			assert.Contains(t, validationFields(t, err), tc.expectedField)
		})
	}

	user, err := svc.Register(ctx, RegisterInput{Login: "manager", Password: "secret123", PasswordConfirmation: "secret123", Phone: "+998"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	_, err = svc.Register(ctx, RegisterInput{Login: "manager", Password: "secret123", PasswordConfirmation: "secret123"})
	assert.Equal(t, []string{"The login has already been taken."}, validationFields(t, err)["login"])
}
