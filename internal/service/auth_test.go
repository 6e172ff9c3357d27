package service

import (
	"context"
	"testing"

	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAuth(t *testing.T, adminEmail string) *AuthService {
	t.Helper()
	return NewAuthService(setupTestStore(t), newTestTokens(t), adminEmail, discardLogger())
}

func TestRegister(t *testing.T) {
	svc := setupTestAuth(t, "Boss@Example.com")
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: " Arber ", Email: "arber@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "Arber", resp.User.Name)
	assert.False(t, resp.User.IsAdmin)

	user, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestRegister_AdminEmail(t *testing.T) {
	svc := setupTestAuth(t, "Boss@Example.com")

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "Boss", Email: "boss@example.COM", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)
}

func TestRegister_NoAdminEmailConfigured(t *testing.T) {
	svc := setupTestAuth(t, "")

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "Boss", Email: "boss@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, resp.User.IsAdmin)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := setupTestAuth(t, "")
	ctx := context.Background()
	req := RegisterRequest{Name: "Arber", Email: "arber@example.com", Password: "secret123"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "ARBER@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc := setupTestAuth(t, "")

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "", Email: "nope", Password: "123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestLogin(t *testing.T) {
	svc := setupTestAuth(t, "")
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Name: "Arber", Email: "arber@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "Arber@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "arber@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthenticate_Invalid(t *testing.T) {
	svc := setupTestAuth(t, "")

	_, err := svc.Authenticate(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	s := setupTestStore(t)
	svc := NewAuthService(s, newTestTokens(t), "", discardLogger())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Arber", Email: "arber@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, resp.User.ID))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
