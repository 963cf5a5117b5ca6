package validator

import (
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"
	"eventrooms/pkg/validation"
)

type RoomValidator struct {
	validator *validation.Validator
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	v := validation.New(log)
	log.Info("Room validator initialized successfully")
	return &RoomValidator{validator: v}
}

func (v *RoomValidator) Validate(room *model.Room) error {
	return v.validator.Struct(room)
}

func (v *RoomValidator) ValidateUpdate(update *model.RoomUpdate) error {
	return v.validator.Struct(update)
}
