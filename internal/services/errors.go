package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrUnauthorized means the operation needs an authenticated caller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but does not own the target.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced profile, post, tag or notification does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries a user-presentable message about rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// notFound maps gorm's missing-record error to ErrNotFound and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &wrapped{msg: what + " not found", err: ErrNotFound}
	}
	return err
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.err }

// errNotFound builds an ErrNotFound with a specific message.
func errNotFound(what string) error {
	return &wrapped{msg: what + " not found", err: ErrNotFound}
}
