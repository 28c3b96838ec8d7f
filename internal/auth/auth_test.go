package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"report_gen/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(models.User{Name: "Admin", Role: models.RoleAdmin})
	require.NoError(t, err)

	user, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, &models.User{Name: "Admin", Role: models.RoleAdmin}, user)
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	token, err := NewJWTManager("other", time.Hour).Generate(models.User{Name: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTManager("secret", -time.Minute).Generate(models.User{Name: "x"})
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTManager("secret", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func serve(t *testing.T, m *JWTManager, header string) (*httptest.ResponseRecorder, *models.User, bool) {
	t.Helper()
	e := echo.New()
	var seen *models.User
	called := false
	e.GET("/", func(c echo.Context) error {
		called = true
		seen = Viewer(c)
		return c.NoContent(http.StatusNoContent)
	}, OptionalAuth(m))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen, called
}

func TestOptionalAuth(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := m.Generate(models.User{Name: "User", Role: models.RoleUser})
	require.NoError(t, err)

	rec, viewer, called := serve(t, m, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
	assert.Nil(t, viewer)

	rec, viewer, called = serve(t, m, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
	assert.Equal(t, &models.User{Name: "User", Role: models.RoleUser}, viewer)

	for _, bad := range []string{"Bearer nope", "Basic dXNlcjpwYXNz", "Bearer"} {
		rec, _, called = serve(t, m, bad)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, bad)
		assert.False(t, called, bad)
	}
}
