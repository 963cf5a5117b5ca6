package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID format")

	ErrInvalidInterval = errors.New("end time must be after start time")

	ErrHasActiveBookings = errors.New("room has active events")

	ErrCapacityShrinkBlocked = errors.New("room capacity cannot be reduced while it has active events")

	ErrNoRoomsAvailable = errors.New("no rooms available for the requested interval")
)
