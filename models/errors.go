package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeFetch        = "FETCH_FAILED"
	ErrCodeTimeout      = "FETCH_TIMEOUT"
	ErrCodeParse        = "PARSE_FAILED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewInvalidInputError rejects a request before any network call is made.
func NewInvalidInputError(message string) *ScrapeError {
	return &ScrapeError{Code: ErrCodeInvalidInput, Message: message}
}

// NewFetchError reports a network failure or non-2xx response.
func NewFetchError(message string, err error) *ScrapeError {
	return &ScrapeError{Code: ErrCodeFetch, Message: message, Err: err}
}

// NewParseError reports a body that could not be read as an HTML document.
func NewParseError(message string, err error) *ScrapeError {
	return &ScrapeError{Code: ErrCodeParse, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsScrapeError unwraps err into a ScrapeError, wrapping unknown errors as
// INTERNAL_ERROR so callers always get a code.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, err.Error(), err)
}

// HasCode reports whether err is a ScrapeError with the given code.
func HasCode(err error, code string) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == code
}

// IsFetchError reports whether err came from the fetch boundary
// (network failure, timeout or non-2xx status).
func IsFetchError(err error) bool {
	return HasCode(err, ErrCodeFetch) || HasCode(err, ErrCodeTimeout)
}
