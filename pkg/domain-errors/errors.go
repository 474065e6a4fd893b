// Package domainerrors carries a small, transport-agnostic error taxonomy.
//
// Services return *Error values (directly or wrapped) so that adapters can map
// them to HTTP statuses without knowing which layer produced them. Stores and
// clients return plain or sentinel errors; services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeUnavailable        Code = "unavailable"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Error is a coded error with an optional cause and optional structured detail.
type Error struct {
	Code    Code
	Message string
	Err     error
	// Detail carries a structured payload (for example per-field validation
	// errors) that adapters may render alongside the message.
	Detail any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithDetail returns a coded error carrying a structured detail payload.
func WithDetail(code Code, msg string, detail any) *Error {
	return &Error{Code: code, Message: msg, Detail: detail}
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the code of the outermost *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailOf returns the detail of the outermost *Error in err's chain.
func DetailOf(err error) any {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return nil
}
