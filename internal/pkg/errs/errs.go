/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and includes a business code, a user-friendly message, and an HTTP status code for unified error reporting.
Codes below 5000 are validation errors (reported to the user, the session continues);
codes from 5000 up are storage and system errors (logged, the operation is aborted).
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"twoogle/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
// It wraps the Go error interface, adding a business code and HTTP status code.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-friendly error description.
	Message string

	// Status is the standard HTTP status code corresponding to this error.
	Status int

	// cause is the underlying error, if any.
	cause error
}

// Error implements the standard Go error interface. It returns a formatted
// error string containing the error code, HTTP status, and message.
func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("Error Code %d (HTTP %d): %s: %v", e.Code, e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Unwrap returns the underlying cause so errors.Is and errors.As can reach it.
func (e *CustomError) Unwrap() error {
	return e.cause
}

// IsValidation reports whether the error belongs to the validation class.
func (e *CustomError) IsValidation() bool {
	return e.Code < ErrUnknown
}

// NewError constructs and returns a new *CustomError instance based on a predefined error code.
// The optional details parameter allows for formatting arguments (printf-style) to be supplied
// for the error message. If an unknown code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
				"code", code,
			)
		}
	}

	return &customErr
}

// Wrap builds the error for code and records cause as its underlying error.
// Storage-class codes log the cause once here, so callers only report.
func Wrap(code int, cause error) *CustomError {
	customErr := NewError(code)
	customErr.cause = cause

	if !customErr.IsValidation() && cause != nil {
		logx.Error(cause, customErr.Message, "code", code)
	}

	return customErr
}

// From extracts the *CustomError from err. Errors of any other type are
// reported as ErrUnknown wrapping err.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return Wrap(ErrUnknown, err)
}

// IsValidation reports whether err is a validation-class CustomError.
func IsValidation(err error) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.IsValidation()
}

// IsStorage reports whether err is a storage or system-class CustomError.
func IsStorage(err error) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && !customErr.IsValidation()
}

// HasCode reports whether err is a CustomError carrying code.
func HasCode(err error, code int) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Code == code
}
