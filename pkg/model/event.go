package model

import "time"

type Event struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,name_text,min=2,max=200"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required"`
	RoomID    string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	Deleted   bool      `json:"-" bson:"deleted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type EventUpdate struct {
	Name      string     `json:"name,omitempty" validate:"omitempty,name_text,min=2,max=200"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	RoomID    string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
}

// IsActive reports whether the event is live and has not ended at now.
func (e *Event) IsActive(now time.Time) bool {
	return !e.Deleted && e.EndTime.After(now)
}
