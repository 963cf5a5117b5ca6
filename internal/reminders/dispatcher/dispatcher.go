package dispatcher

import (
	"context"
	"fmt"

	"eventrooms/pkg/kafka"
	"eventrooms/pkg/model"
)

const (
	MessageTypeReminder = "event.reminder"
	SchemaVersion       = "1"
)

// Dispatcher delivers one reminder to one participant.
type Dispatcher interface {
	Dispatch(ctx context.Context, reminder *model.Reminder) error
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaDispatcher publishes reminders as JSON keyed by participant email, so
// every reminder for one person lands on the same partition.
type KafkaDispatcher struct {
	publisher Publisher
	source    string
}

func NewKafkaDispatcher(publisher Publisher, source string) *KafkaDispatcher {
	return &KafkaDispatcher{
		publisher: publisher,
		source:    source,
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, reminder *model.Reminder) error {
	msg, err := kafka.NewMessage().
		WithKey(reminder.Email).
		WithValue(reminder).
		WithMessageID(reminderID(reminder)).
		WithType(MessageTypeReminder).
		WithSchemaVersion(SchemaVersion).
		WithSource(d.source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build reminder message: %w", err)
	}

	if err := d.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish reminder for event %s: %w", reminder.EventID, err)
	}
	return nil
}

// reminderID is stable per event, participant and start time so a consumer
// can drop duplicates from overlapping runs.
func reminderID(r *model.Reminder) string {
	return fmt.Sprintf("%s:%s:%d", r.EventID, r.ParticipantID, r.StartTime.Unix())
}
