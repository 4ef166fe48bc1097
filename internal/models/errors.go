package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownRegion     = errors.New("region not found")
	ErrEstimationFailure = errors.New("estimation failed")
	ErrDivisionUndefined = errors.New("predicted price is zero")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidCode       = errors.New("invalid category code")
)

// InputError reports a rejected request together with the values that were
// parsed from it, so clients can see what the server actually received.
type InputError struct {
	Reason  string
	Details map[string]interface{}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInputError builds an InputError with the given parsed values.
func NewInputError(reason string, details map[string]interface{}) *InputError {
	return &InputError{Reason: reason, Details: details}
}

// IsClientError reports whether err should be answered with a 4xx status.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownRegion) ||
		errors.Is(err, ErrUnknownCategory)
}
