package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authcore/account-service/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"user exists", domain.ErrUserExists, http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"wrapped store fault", errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if !strings.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				t.Fatalf("expected JSON envelope, got %s", rec.Header().Get(echo.HeaderContentType))
			}
		})
	}
}

// Internal causes of unexpected errors must never reach the client.
func TestHTTPErrorHandler_NoInternalLeak(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(errors.New("secret internal detail"), c)

	if strings.Contains(rec.Body.String(), "secret internal detail") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}
