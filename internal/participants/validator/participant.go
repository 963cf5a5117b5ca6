package validator

import (
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"
	"eventrooms/pkg/validation"
)

type ParticipantValidator struct {
	validator *validation.Validator
}

func NewParticipantValidator(log *logger.Logger) *ParticipantValidator {
	v := validation.New(log)
	log.Info("Participant validator initialized successfully")
	return &ParticipantValidator{validator: v}
}

func (v *ParticipantValidator) Validate(participant *model.Participant) error {
	return v.validator.Struct(participant)
}

func (v *ParticipantValidator) ValidateUpdate(update *model.ParticipantUpdate) error {
	return v.validator.Struct(update)
}
