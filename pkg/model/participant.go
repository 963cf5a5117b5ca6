package model

import "time"

type Participant struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName string    `json:"first_name" bson:"first_name" validate:"required,name_text,min=1,max=100"`
	LastName  string    `json:"last_name" bson:"last_name" validate:"required,name_text,min=1,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,phone_e164"`
	Deleted   bool      `json:"-" bson:"deleted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// RegistrationVersion is bumped by every registration and by delete so
	// the two conflict when they race.
	RegistrationVersion int64 `json:"-" bson:"registration_version"`
}

type ParticipantUpdate struct {
	FirstName string  `json:"first_name,omitempty" validate:"omitempty,name_text,min=1,max=100"`
	LastName  string  `json:"last_name,omitempty" validate:"omitempty,name_text,min=1,max=100"`
	Email     string  `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone     *string `json:"phone,omitempty"`
}

// RegistrationRequest is the identity a caller supplies when registering
// for an event.
type RegistrationRequest struct {
	FirstName string `json:"first_name" validate:"required,name_text,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,name_text,min=1,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone_e164"`
}
