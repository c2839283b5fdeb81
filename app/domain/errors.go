package domain

import "errors"

// Identity lifecycle errors
var (
	// Authentication errors
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOperationInProgress = errors.New("identity operation already in progress")
	ErrNoSession           = errors.New("no active session")

	// Resolution errors
	ErrProfileFetchFailure    = errors.New("profile fetch failed")
	ErrProfileCreationFailure = errors.New("profile creation failed")
	ErrRefreshFailure         = errors.New("session refresh failed")

	// Sign-up errors
	ErrCredentialExists = errors.New("credential already exists")

	// Cache errors
	ErrCacheReadFailure = errors.New("cache read failed")

	// General errors
	ErrGatewayUnavailable = errors.New("identity backend unavailable")
	ErrInternal           = errors.New("internal error")
)

// AuthError represents authentication-related errors with additional context
type AuthError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new authentication error
func NewAuthError(code, message string, cause error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common auth error codes
const (
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeOperationInProgress = "OPERATION_IN_PROGRESS"
	ErrCodeProfileFetch        = "PROFILE_FETCH_FAILURE"
	ErrCodeProfileCreation     = "PROFILE_CREATION_FAILURE"
	ErrCodeRefreshFailure      = "REFRESH_FAILURE"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)
