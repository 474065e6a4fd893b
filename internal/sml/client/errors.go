package client

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy of SML calls.
type ErrorCategory string

const (
	// ErrorAuthentication covers HTTP 401/403 and UnauthorizedFault.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorNotFound means the SML does not know the SMP (NotFoundFault).
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorBadRequest means the SML rejected the payload (BadRequestFault).
	ErrorBadRequest ErrorCategory = "bad_request"

	// ErrorRemoteFault covers any other SOAP fault or HTTP error status.
	ErrorRemoteFault ErrorCategory = "remote_fault"

	// ErrorNetwork covers dial, TLS handshake and timeout failures.
	ErrorNetwork ErrorCategory = "network"

	// ErrorInternal indicates a local failure before anything was sent.
	ErrorInternal ErrorCategory = "internal"
)

// TransportError is the only error type returned by Client.
type TransportError struct {
	Category  ErrorCategory
	Operation string
	Endpoint  string
	// FaultCode is the local name of the SOAP fault detail element, or the
	// faultcode when there is no detail.
	FaultCode  string
	Message    string
	StatusCode int
	Underlying error
}

func (e *TransportError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("sml %s at %s [%s]: %s: %v", e.Operation, e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("sml %s at %s [%s]: %s", e.Operation, e.Endpoint, e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

// ClassName is a stable name for the failure kind, recorded in audit
// events and failure outcomes.
func (e *TransportError) ClassName() string {
	if e.FaultCode != "" && e.Category != ErrorNetwork && e.Category != ErrorInternal {
		return e.FaultCode
	}
	switch e.Category {
	case ErrorAuthentication:
		return "AuthenticationError"
	case ErrorNotFound:
		return "NotFoundError"
	case ErrorBadRequest:
		return "BadRequestError"
	case ErrorRemoteFault:
		if e.StatusCode != 0 {
			return "HTTPError"
		}
		return "SOAPFault"
	case ErrorNetwork:
		return "NetworkError"
	default:
		return "InternalError"
	}
}

// ClassOf returns the class name of err, unwrapping to a TransportError
// when possible.
func ClassOf(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.ClassName()
	}
	return fmt.Sprintf("%T", err)
}

// GetCategory extracts the category from err.
func GetCategory(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrorInternal
}
