package service

import (
	"errors"
	"fmt"
)

// InputError means the caller sent invalid data or asked for an action
// that is illegal in the current state
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// AccessError means the credential is missing, invalid or not allowed
type AccessError struct {
	Message string
}

func (e *AccessError) Error() string {
	return e.Message
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

func accessErrorf(format string, args ...any) error {
	return &AccessError{Message: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is or wraps an InputError
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsAccessError reports whether err is or wraps an AccessError
func IsAccessError(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
