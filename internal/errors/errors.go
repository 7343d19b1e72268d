// Package errors provides custom error types for the bourse API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Trading errors.
var (
	ErrInsufficientFunds  = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient balance for this purchase", StatusCode: http.StatusBadRequest}
	ErrInsufficientShares = &AppError{Code: "INSUFFICIENT_SHARES", Message: "Insufficient shares for this sale", StatusCode: http.StatusBadRequest}
	ErrInvalidQuantity    = &AppError{Code: "INVALID_QUANTITY", Message: "Invalid share quantity", StatusCode: http.StatusBadRequest}
)

// Market errors.
var (
	ErrUnknownStock    = &AppError{Code: "UNKNOWN_STOCK", Message: "Stock not found for this year", StatusCode: http.StatusNotFound}
	ErrUnknownCategory = &AppError{Code: "UNKNOWN_CATEGORY", Message: "Unknown stock category", StatusCode: http.StatusBadRequest}
)

// Player errors.
var (
	ErrUnknownPlayer   = &AppError{Code: "UNKNOWN_PLAYER", Message: "Player not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePlayer = &AppError{Code: "DUPLICATE_PLAYER", Message: "A player with this name already exists", StatusCode: http.StatusConflict}
)

// Game errors.
var (
	ErrGameNotFound   = &AppError{Code: "GAME_NOT_FOUND", Message: "No game has been initialized", StatusCode: http.StatusNotFound}
	ErrYearOutOfRange = &AppError{Code: "YEAR_OUT_OF_RANGE", Message: "Year must be between 1900 and 2024", StatusCode: http.StatusBadRequest}
)
