package services

import (
	"errors"
	"fmt"
)

var (
	// ErrRequired is returned when a required draft field is empty
	ErrRequired = errors.New("required field is empty")

	// ErrInvalidChoice is returned when a select field is set to a value
	// outside the choices snapshotted at open
	ErrInvalidChoice = errors.New("value is not one of the available choices")

	// ErrLockedField is returned when a locked field is edited
	ErrLockedField = errors.New("field cannot be changed")

	// ErrUnknownField is returned for a field name the form does not have
	ErrUnknownField = errors.New("unknown field")

	// ErrForbidden is returned when the acting role may not perform an action
	ErrForbidden = errors.New("permission denied")

	// ErrNotAuthenticated is returned when an operation needs a session
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrFormClosed is returned when a closed form session is used
	ErrFormClosed = errors.New("form is not open")
)

// FieldError ties a validation failure to the field it concerns
type FieldError struct {
	Field string
	Label string
	Err   error
}

func (e *FieldError) Error() string {
	name := e.Label
	if name == "" {
		name = e.Field
	}
	if errors.Is(e.Err, ErrRequired) {
		return fmt.Sprintf("%s is required", name)
	}
	return fmt.Sprintf("%s: %v", name, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
