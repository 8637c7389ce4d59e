// Package errors provides the coded rejection errors shared by the economy
// engine. Every rejected action reports one of these codes and leaves state
// untouched.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection code.
type Code string

const (
	// CodeUnknown represents an error that is not a domain rejection.
	CodeUnknown Code = "UNKNOWN"

	// CodeInsufficientFunds means the action costs more than the franchise holds.
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	// CodeNotYourTurn means a party acted while the other party held the turn.
	CodeNotYourTurn Code = "NOT_YOUR_TURN"
	// CodeNotFound means a referenced fighter, facility or staff role does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeMaxLevel means a facility upgrade was attempted at the level cap.
	CodeMaxLevel Code = "MAX_LEVEL"
	// CodeStorageCorrupt means a persisted blob failed to decode or validate.
	// It is recovered locally by reseeding and never returned from an action.
	CodeStorageCorrupt Code = "STORAGE_CORRUPT"
)

// Sentinel errors for errors.Is comparisons.
var (
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds, Message: "not enough cash"}
	ErrNotYourTurn       = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrMaxLevel          = &Error{Code: CodeMaxLevel, Message: "already at max level"}
	ErrStorageCorrupt    = &Error{Code: CodeStorageCorrupt, Message: "stored state is corrupt"}
)

// Error is a coded domain error.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	cause    error
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMeta returns a copy of the error with an extra metadata entry.
func (e *Error) WithMeta(key, value string) *Error {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	return &Error{Code: e.Code, Message: e.Message, Metadata: meta, cause: e.cause}
}

// GetCode extracts the code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsRejection reports whether err is one of the recoverable action rejections
// (as opposed to an infrastructure failure such as a failed save).
func IsRejection(err error) bool {
	switch GetCode(err) {
	case CodeInsufficientFunds, CodeNotYourTurn, CodeNotFound, CodeMaxLevel:
		return true
	default:
		return false
	}
}
