package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryFeed    Category = "feed"
	CategoryInspect Category = "inspect"
	CategoryCLI     Category = "cli"
)

// ViewModelError is a structured error with a code, detail and suggestion.
type ViewModelError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (config, feed, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ViewModelError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ViewModelError) Unwrap() error {
	return e.Wrapped
}

// Is matches another ViewModelError with the same code, so
// errors.Is(err, errors.New("E203")) works.
func (e *ViewModelError) Is(target error) bool {
	t, ok := target.(*ViewModelError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ViewModelError) WithSuggestion(s string) *ViewModelError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ViewModelError) WithDetail(d string) *ViewModelError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ViewModelError) Wrap(err error) *ViewModelError {
	e.Wrapped = err
	return e
}

// New creates a ViewModelError from a registered error code.
func New(code string) *ViewModelError {
	template, ok := registry[code]
	if !ok {
		return &ViewModelError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ViewModelError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ViewModelError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ViewModelError {
	return &ViewModelError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ViewModelError.
func FromError(err error, code string) *ViewModelError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*ViewModelError); ok {
		return ve
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, is a ViewModelError
// with the given code.
func HasCode(err error, code string) bool {
	var ve *ViewModelError
	for err != nil {
		if !stderrors.As(err, &ve) {
			return false
		}
		if ve.Code == code {
			return true
		}
		err = ve.Wrapped
	}
	return false
}
