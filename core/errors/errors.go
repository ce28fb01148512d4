package errors

import "fmt"

type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Calendar sync failure taxonomy. ErrReauthRequired means the stored
	// grant is unrecoverable without the user going through OAuth again;
	// ErrProviderUnavailable is transient and safe to retry later;
	// ErrProviderAPI is a per-call application error unrelated to auth.
	ErrReauthRequired      ErrorCode = "REAUTH_REQUIRED"
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrProviderAPI         ErrorCode = "PROVIDER_API_ERROR"
	ErrConnectionNotFound  ErrorCode = "CONNECTION_NOT_FOUND"
	ErrSyncDisabled        ErrorCode = "SYNC_DISABLED"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	// HTTPStatus carries the upstream status code when the error came from
	// a provider response; zero otherwise.
	HTTPStatus int `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NeedsReauth reports whether the failure can only be recovered by the
// user re-granting provider access.
func NeedsReauth(err *AppError) bool {
	return err != nil && err.Code == ErrReauthRequired
}

// IsTransient reports whether retrying the same operation later, with no
// state change, is a valid recovery.
func IsTransient(err *AppError) bool {
	return err != nil && err.Code == ErrProviderUnavailable
}
