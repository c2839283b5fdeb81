package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/port"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/utils/validator"
)

// AuthHandler handles the auth lifecycle HTTP requests
type AuthHandler struct {
	lifecycle port.AuthLifecycle
	validator *validator.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(lifecycle port.AuthLifecycle, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		lifecycle: lifecycle,
		validator: validator.New(),
		logger:    logger.With("component", "auth_handler"),
	}
}

// ErrorResponse is the error payload shape
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strong_password"`
	DisplayName string `json:"display_name" validate:"required,display_name"`
}

// ResetPasswordRequest is the password reset payload
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	if err := h.lifecycle.SignIn(c.Request().Context(), req.Email, req.Password); err != nil {
		return h.writeAuthError(c, err)
	}

	// Resolution is asynchronous; the client polls /me for the identity.
	return c.JSON(http.StatusAccepted, h.lifecycle.Current())
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	identity, err := h.lifecycle.SignUp(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, identity)
}

// Logout handles POST /v1/auth/logout. Always succeeds from the client's
// point of view: local state is cleared optimistically.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.lifecycle.SignOut(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword handles POST /v1/auth/password/reset
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	if err := h.lifecycle.ResetPassword(c.Request().Context(), req.Email); err != nil {
		h.logger.Warn("password reset failed", "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "password reset could not be started",
		})
	}

	return c.NoContent(http.StatusAccepted)
}

// Me handles GET /v1/auth/me: the {identity, loading} snapshot
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, h.lifecycle.Current())
}

func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrOperationInProgress):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: "another identity operation is in progress",
			Code:  domain.ErrCodeOperationInProgress,
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "invalid email or password",
			Code:  domain.ErrCodeInvalidCredentials,
		})
	case errors.Is(err, domain.ErrCredentialExists):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: "an account with this email already exists",
		})
	default:
		h.logger.Error("auth operation failed", "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "identity backend unavailable",
			Code:  domain.ErrCodeGatewayUnavailable,
		})
	}
}
