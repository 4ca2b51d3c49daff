package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized            = errors.New("unauthorized: credential expired or revoked")
	ErrNotFound                = errors.New("not found")
	ErrAlreadyExists           = errors.New("already exists")
	ErrInvalidLink             = errors.New("link is not a valid gradebook link")
	ErrSchemaBounds            = errors.New("grid exceeds gradebook schema bounds")
	ErrAlreadyShared           = errors.New("gradebook has already been shared with parent")
	ErrNothingToUnshare        = errors.New("nothing to unshare")
	ErrParentNotLinked         = errors.New("student does not have such parent")
	ErrParentNotFound          = errors.New("parent not found")
	ErrStudentNotFound         = errors.New("student not found in gradebook")
	ErrGradeBookNotFound       = errors.New("gradebook not found")
	ErrParentGradeBookNotFound = errors.New("parent gradebook not found")
	ErrInvalidSortMode         = errors.New("invalid report sort mode for this gradebook")
	ErrNotImplemented          = errors.New("not implemented")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
