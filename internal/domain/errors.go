package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrTrackingIDTaken     = errors.New("tracking id already in use")
	ErrTrackingIDExhausted = errors.New("daily tracking id capacity exhausted")
	ErrQuoteRequired       = errors.New("a successful price quote is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrBookingsClosed      = errors.New("bookings are currently closed")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTooManyAttempts     = errors.New("too many attempts")
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target) || errors.Is(err, ErrBookingNotFound)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
