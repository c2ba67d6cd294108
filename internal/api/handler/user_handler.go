package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authcore/account-service/internal/api/metrics"
	"github.com/authcore/account-service/internal/api/middleware"
	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// callerUsername extracts the subject injected by the Auth middleware.
func callerUsername(c echo.Context) (string, error) {
	username, _ := c.Get(middleware.UsernameKey).(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, nil
}

// Register creates a new account with role "user".
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Login authenticates credentials and returns a bearer token.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		// Missing fields fail the same way as bad credentials so the
		// response shape never hints at which part was wrong.
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return domain.ErrInvalidCredentials
	}

	tkn, _, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: tkn, TokenType: "bearer"})
}

// Me returns the caller's own profile.
//
// @Summary      Get own profile
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	username, err := callerUsername(c)
	if err != nil {
		return err
	}

	p, err := h.accounts.Profile(c.Request().Context(), username)
	if err != nil {
		return err
	}

	resp := profileResponse{
		ID:       p.User.ID,
		Username: p.User.Username,
		Role:     p.User.Role,
	}
	if !p.LastLoginAt.IsZero() {
		last := p.LastLoginAt
		resp.LastLoginAt = &last
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateMe applies a partial update to the caller's own profile.
//
// @Summary      Update own profile
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	username, err := callerUsername(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), username, ports.UpdateProfileInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteMe removes the caller's own account.
//
// @Summary      Delete own account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	username, err := callerUsername(c)
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteSelf(c.Request().Context(), username); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Msg: "account successfully deleted"})
}

// AdminListUsers returns every account. Admin-gated by middleware.
//
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *UserHandler) AdminListUsers(c echo.Context) error {
	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.AdminActionsTotal.WithLabelValues("list_users").Inc()

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// AdminDeleteUser removes an account by id. Admin-gated by middleware.
//
// @Summary      Delete a user by id
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) AdminDeleteUser(c echo.Context) error {
	if err := h.accounts.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.AdminActionsTotal.WithLabelValues("delete_user").Inc()
	return c.JSON(http.StatusOK, messageResponse{Msg: "user deleted"})
}
