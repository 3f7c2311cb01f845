package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError carries the user-facing hint and structured details
// alongside the wrapped cause. It satisfies the error interface and
// participates in errors.Is chains through Unwrap.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint attached to the error, if any.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.hint
	}
	return ""
}

// ReportableDetails returns the structured details attached to the error, if any.
func ReportableDetails(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.reportableDetails
	}
	return nil
}

// ErrorBuilder accumulates context before the error is classified
// with Mark. Usage:
//
//	ierr.NewError("amount must be greater than zero").
//	    WithHint("Confirmed amount must be a positive value").
//	    WithReportableDetails(map[string]interface{}{"amount": amount}).
//	    Mark(ierr.ErrValidation)
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from a new error message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.New(message)},
	}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.Newf(format, args...)},
	}
}

// WithError starts a builder that wraps an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: err},
	}
}

// WithHint attaches a user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to the caller.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark classifies the error with one of the sentinel kinds and finalizes it.
func (b *ErrorBuilder) Mark(sentinel error) error {
	return &InternalError{
		cause:             errors.Mark(b.err.cause, sentinel),
		hint:              b.err.hint,
		reportableDetails: b.err.reportableDetails,
	}
}
