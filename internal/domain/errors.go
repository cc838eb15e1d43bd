package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID  = "invalid"   // Undecodable input
	ECONFIG   = "config"    // Deployment misconfiguration, never retried
	EDELIVERY = "delivery"  // Email provider or network failure, retry is up to the user
	ECONFLICT = "conflict"  // A submission is already in flight for the form
	ENOTFOUND = "not_found" // Resource not found
	EINTERNAL = "internal"  // Internal server error
)

// User-facing messages. Provider detail never reaches the visitor.
const (
	MsgUnavailable    = "Sorry, the contact form is currently unavailable."
	MsgDeliveryFailed = "Something went wrong while sending your message. Please try again."
	MsgInFlight       = "Your message is already being sent."
	msgInternal       = "An internal error occurred. Please try again later."
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "contact.submit")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return msgInternal
		}
		return e.Message
	}
	return msgInternal
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// ErrorDetail returns the diagnostic text behind err, suitable for logs only.
func ErrorDetail(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

// Config creates a misconfiguration error. detail names what is missing.
func Config(op, detail string) *Error {
	return &Error{
		Code:    ECONFIG,
		Op:      op,
		Message: MsgUnavailable,
		Err:     errors.New(detail),
	}
}

// Delivery wraps a provider failure behind the generic user message.
func Delivery(err error, op string) *Error {
	return &Error{
		Code:    EDELIVERY,
		Op:      op,
		Message: MsgDeliveryFailed,
		Err:     err,
	}
}

// Invalid creates an input error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsConfig reports whether err is a misconfiguration error.
func IsConfig(err error) bool {
	return ErrorCode(err) == ECONFIG
}

// IsDelivery reports whether err is a delivery failure.
func IsDelivery(err error) bool {
	return ErrorCode(err) == EDELIVERY
}
