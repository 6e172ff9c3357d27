package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"name":     "Arber",
		"email":    "arber@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[AuthResponse](t, resp)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Equal(t, 3600, env.Data.ExpiresIn)
	assert.Equal(t, "Arber", env.Data.User.Name)
	assert.False(t, env.Data.User.IsAdmin)
	assert.NotContains(t, resp.Body.String(), "password")
}

func TestRegister_AdminEmail(t *testing.T) {
	ts := setupTestServer(t)

	_, user := ts.register(t, "Admin", "ADMIN@example.com")
	assert.True(t, user.IsAdmin)
}

func TestRegister_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Arber", "arber@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"name":     "Other",
		"email":    "arber@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeEnvelope[any](t, resp).Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"name":     "Arber",
		"email":    "arber@example.com",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "Arber", "arber@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "arber@example.com",
			"password": "secret123",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.NotEmpty(t, decodeEnvelope[AuthResponse](t, resp).Data.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "arber@example.com",
			"password": "nope-nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope[any](t, resp).Code)
	})
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	authz, _ := ts.register(t, "Arber", "arber@example.com")

	resp := ts.api.Get("/api/v1/users/me", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "arber@example.com", decodeEnvelope[UserResponse](t, resp).Data.Email)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Basic abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHome(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("unauthenticated", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/home")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeEnvelope[any](t, resp).Code)
	})

	memberAuth, member := ts.register(t, "Arber", "arber@example.com")
	ts.createBook(t, member.ID, "Dune", "Reading")
	adminAuth, _ := ts.register(t, "Admin", testAdminEmail)

	t.Run("member sees own books", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/home", memberAuth)
		require.Equal(t, http.StatusOK, resp.Code)

		env := decodeEnvelope[HomeResponse](t, resp)
		assert.Nil(t, env.Data.Dashboard)
		require.Len(t, env.Data.Books, 1)
		assert.Equal(t, "Dune", env.Data.Books[0].Title)
	})

	t.Run("admin sees dashboard", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/home", adminAuth)
		require.Equal(t, http.StatusOK, resp.Code)

		env := decodeEnvelope[HomeResponse](t, resp)
		require.NotNil(t, env.Data.Dashboard)
		assert.Equal(t, 1, env.Data.Dashboard.TotalUsers)
		assert.Equal(t, 1, env.Data.Dashboard.TotalBooks)
		require.NotNil(t, env.Data.Dashboard.TopUser)
		assert.Equal(t, "Arber", env.Data.Dashboard.TopUser.Name)
	})
}
