package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors that classify every failure the service can produce.
// Errors are marked with one of these via Mark and checked with the
// Is* helpers below.
var (
	// ErrValidation indicates malformed or out-of-range input. Always
	// caller-fixable; rejected before any state change.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists indicates a uniqueness conflict on create.
	ErrAlreadyExists = errors.New("item already exists")

	// ErrInvalidOperation indicates the entity exists but is in a state
	// that does not permit the requested transition (e.g. confirming a
	// purchase that is already active).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrIntegration indicates an external collaborator (payment gateway,
	// email provider) failed or timed out. Local state is unchanged and
	// the operation is retryable.
	ErrIntegration = errors.New("integration error")

	// ErrPermissionDenied indicates the caller is not allowed to perform
	// the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrHTTPClient indicates a low-level outbound HTTP failure.
	ErrHTTPClient = errors.New("http client error")

	// ErrDatabase indicates a storage-layer failure.
	ErrDatabase = errors.New("database error")

	// ErrInternal is the catch-all for unexpected failures.
	ErrInternal = errors.New("internal error")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsValidation returns true if the error is marked as a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error is marked as a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if the error is marked as an already-exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidOperation returns true if the error is marked as an invalid-operation error.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsIntegration returns true if the error is marked as an integration error.
func IsIntegration(err error) bool {
	return errors.Is(err, ErrIntegration)
}

// IsPermissionDenied returns true if the error is marked as a permission-denied error.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsDatabase returns true if the error is marked as a database error.
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}
