package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

// RequireAdmin gates a route on the admin role. The role is re-read from
// the store on every request rather than trusted from the token, so a
// demotion takes effect immediately even while old tokens are valid.
// Only a missing user or a non-admin role produce 403; store faults
// propagate so the error handler can report them as retryable.
func RequireAdmin(repo ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(UsernameKey).(string)
			if username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := repo.FindByUsername(c.Request().Context(), username)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
				}
				return err
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}

			return next(c)
		}
	}
}
