package happycall

import (
	"github.com/happycall-qa/happycall/internal/errors"
)

const componentName = "happycall"

// userError carries a message meant for the end user plus the cause.
type userError struct {
	msg   string
	cause error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.cause }

// NewUserError builds an error whose message is shown to the end user.
func NewUserError(category errors.ErrorCategory, msg string, cause error) error {
	return errors.New(&userError{msg: msg, cause: cause}).
		Component(componentName).
		Category(category).
		Build()
}

func validationError(msg string) error {
	return NewUserError(errors.CategoryValidation, msg, nil)
}

func conflictError(msg string, cause error) error {
	return NewUserError(errors.CategoryConflict, msg, cause)
}

func notFoundError(msg string, cause error) error {
	return NewUserError(errors.CategoryNotFound, msg, cause)
}

// storeError wraps an unexpected persistence failure.
func storeError(operation string, err error) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

// UserMessage returns the message to show for err and whether one exists.
// Only validation, conflict, not-found and authorization failures carry one.
func UserMessage(err error) (string, bool) {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg, true
	}
	var d *Denial
	if errors.As(err, &d) {
		return d.Error(), true
	}
	return "", false
}

// DenialOf returns the gate decision behind err, if any.
func DenialOf(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
