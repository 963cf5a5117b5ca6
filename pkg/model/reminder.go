package model

import "time"

// ReminderLease guards one reminder window so only one runner dispatches it.
// Mongo drops expired leases through a TTL index on expires_at.
type ReminderLease struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Reminder is the message handed to the external mailer.
type Reminder struct {
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	RoomID        string    `json:"room_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ParticipantID string    `json:"participant_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
}

type ReminderRunResult struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Events      int       `json:"events"`
	Dispatched  int       `json:"dispatched"`
	Failed      int       `json:"failed"`
	Skipped     bool      `json:"skipped"`
}
