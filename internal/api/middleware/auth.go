package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/api/metrics"
)

// UsernameKey is the context key the Auth middleware stores the verified
// subject under.
const UsernameKey = "username"

// TokenVerifier resolves a raw bearer token to its subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth validates the bearer token and injects the subject into context.
// Every failure mode returns the same 401 so token validation internals
// never leak to the client.
func Auth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			subject, err := tokens.Verify(parts[1])
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set(UsernameKey, subject)
			return next(c)
		}
	}
}
