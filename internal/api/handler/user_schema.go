package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is returned by operations whose only payload is a confirmation.
type messageResponse struct {
	Msg string `json:"msg"`
}

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest carries independently optional fields; absent
// fields are left unchanged. Pointers distinguish "absent" from "empty".
type updateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=128"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes. The password hash has no representation here.

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type profileResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
