package auth

import (
	"net/http"
	"strings"

	"report_gen/internal/models"

	"github.com/labstack/echo/v4"
)

const viewerKey = "viewer"

// Viewer returns the user resolved for the request, or nil when the request
// carried no token.
func Viewer(c echo.Context) *models.User {
	user, _ := c.Get(viewerKey).(*models.User)
	return user
}

// OptionalAuth validates a bearer token when present. Requests without an
// Authorization header continue with no viewer; bad tokens are rejected.
func OptionalAuth(m *JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
			}

			user, err := m.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
			}

			c.Set(viewerKey, user)
			return next(c)
		}
	}
}
