package model

import "time"

type Room struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,name_text,min=2,max=100"`
	Capacity       int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	Deleted        bool      `json:"-" bson:"deleted"`
	BookingVersion int64     `json:"-" bson:"booking_version"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type RoomUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,name_text,min=2,max=100"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
}
