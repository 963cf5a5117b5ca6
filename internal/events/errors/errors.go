package errors

import "errors"

var (
	ErrNotFound = errors.New("event not found")

	ErrInvalidID = errors.New("invalid event ID format")

	ErrInvalidInterval = errors.New("end time must be after start time")

	ErrPastStart = errors.New("start time cannot be before the current day")

	ErrRoomUnavailable = errors.New("room is already booked for the requested interval")

	ErrEventEnded = errors.New("event has already ended")

	ErrAlreadyRegistered = errors.New("participant is already registered for this event")
)
