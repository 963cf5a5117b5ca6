package validator

import (
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"
	"eventrooms/pkg/validation"
)

// EventValidator checks field shape only. Interval ordering and the
// start-of-day rule are enforced by the service so they can carry their own
// error kinds.
type EventValidator struct {
	validator *validation.Validator
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v := validation.New(log)
	log.Info("Event validator initialized successfully")
	return &EventValidator{validator: v}
}

func (v *EventValidator) Validate(event *model.Event) error {
	return v.validator.Struct(event)
}

func (v *EventValidator) ValidateUpdate(update *model.EventUpdate) error {
	return v.validator.Struct(update)
}
