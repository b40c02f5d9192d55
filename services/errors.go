package services

import (
	"errors"
	"fmt"
)

// UserError carries a failure message meant for the player who ran the
// command, verbatim. Everything else that comes out of a service is an
// internal error and surfaces to the user as a generic reply.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// Userf builds a UserError with a formatted message.
func Userf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// AsUserError reports whether err (or anything it wraps) is a UserError.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
