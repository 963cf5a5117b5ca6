package errors

import "errors"

var (
	ErrNotFound = errors.New("participant not found")

	ErrInvalidID = errors.New("invalid participant ID format")

	ErrIdentityMismatch = errors.New("participant details do not match the registered identity")

	ErrDuplicateEmail = errors.New("participant with this email already exists")

	ErrHasActiveEvents = errors.New("participant is registered for active events")
)
