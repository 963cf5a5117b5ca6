package model

import "time"

// Registration links a participant to an event. Neither side owns it and
// it survives soft deletion of either.
type Registration struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	EventID       string    `json:"event_id" bson:"event_id"`
	ParticipantID string    `json:"participant_id" bson:"participant_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

type RegistrationResult struct {
	EventID     string       `json:"event_id"`
	Participant *Participant `json:"participant"`
	Created     bool         `json:"participant_created"`
}
