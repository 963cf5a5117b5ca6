package job

import (
	"context"
	"fmt"
	"time"

	"eventrooms/internal/reminders/dispatcher"
	"eventrooms/internal/reminders/repository"
	"eventrooms/pkg/config"
	"eventrooms/pkg/model"

	"github.com/google/uuid"
)

type UpcomingEvents interface {
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*model.Event, error)
}

type RegistrationReader interface {
	FindParticipantIDs(ctx context.Context, eventID string) ([]string, error)
}

type ParticipantReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error)
}

// Job sends one reminder per registered participant of every event starting
// within the reminder window. Each window is claimed through a lease so
// parallel runners do not send twice.
type Job struct {
	events        UpcomingEvents
	registrations RegistrationReader
	participants  ParticipantReader
	leases        repository.LeaseRepository
	dispatcher    dispatcher.Dispatcher
	cfg           *config.Config
	owner         string
	now           func() time.Time
}

func New(
	events UpcomingEvents,
	registrations RegistrationReader,
	participants ParticipantReader,
	leases repository.LeaseRepository,
	dispatcher dispatcher.Dispatcher,
	cfg *config.Config,
) *Job {
	return &Job{
		events:        events,
		registrations: registrations,
		participants:  participants,
		leases:        leases,
		dispatcher:    dispatcher,
		cfg:           cfg,
		owner:         uuid.New().String(),
		now:           time.Now,
	}
}

// Start runs the job immediately and then on every interval tick until ctx
// is cancelled. Run errors are logged, not returned.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.ReminderInterval)
	defer ticker.Stop()

	j.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			j.cfg.Log.Info("Reminder job stopped")
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	result, err := j.Run(ctx)
	if err != nil {
		j.cfg.Log.Error("Reminder run failed", "error", err)
		return
	}
	j.cfg.Log.Info("Reminder run finished",
		"window_start", result.WindowStart,
		"window_end", result.WindowEnd,
		"events", result.Events,
		"dispatched", result.Dispatched,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
}

// Run performs one pass. A failed dispatch is counted and the pass moves on.
func (j *Job) Run(ctx context.Context) (*model.ReminderRunResult, error) {
	now := j.now().UTC()
	result := &model.ReminderRunResult{
		WindowStart: now,
		WindowEnd:   now.Add(j.cfg.ReminderWindow),
	}

	lease := &model.ReminderLease{
		ID:        j.leaseKey(now),
		Owner:     j.owner,
		ExpiresAt: now.Add(j.cfg.ReminderLeaseTTL),
	}
	acquired, err := j.leases.Acquire(ctx, lease)
	if err != nil {
		return nil, err
	}
	if !acquired {
		j.cfg.Log.Info("Reminder window already claimed", "lease", lease.ID)
		result.Skipped = true
		return result, nil
	}

	events, err := j.events.GetUpcoming(ctx, result.WindowStart, result.WindowEnd)
	if err != nil {
		if releaseErr := j.leases.Release(ctx, lease.ID, j.owner); releaseErr != nil {
			j.cfg.Log.Error("Failed to release reminder lease", "lease", lease.ID, "error", releaseErr)
		}
		return nil, fmt.Errorf("failed to load upcoming events: %w", err)
	}
	events = startingBefore(events, result.WindowEnd)
	result.Events = len(events)

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		j.remindEvent(ctx, event, result)
	}

	return result, nil
}

func (j *Job) remindEvent(ctx context.Context, event *model.Event, result *model.ReminderRunResult) {
	ids, err := j.registrations.FindParticipantIDs(ctx, event.ID)
	if err != nil {
		j.cfg.Log.Error("Failed to load registrations", "event_id", event.ID, "error", err)
		result.Failed++
		return
	}

	participants, err := j.participants.FindByIDs(ctx, ids)
	if err != nil {
		j.cfg.Log.Error("Failed to load participants", "event_id", event.ID, "error", err)
		result.Failed++
		return
	}

	for _, p := range participants {
		reminder := &model.Reminder{
			EventID:       event.ID,
			EventName:     event.Name,
			RoomID:        event.RoomID,
			StartTime:     event.StartTime,
			EndTime:       event.EndTime,
			ParticipantID: p.ID,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			Email:         p.Email,
		}
		if err := j.dispatcher.Dispatch(ctx, reminder); err != nil {
			j.cfg.Log.Error("Failed to dispatch reminder",
				"event_id", event.ID,
				"participant_id", p.ID,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Dispatched++
	}
}

// startingBefore drops events starting exactly at end. The window is
// [start, end) so the next run, whose window starts at end, owns them.
func startingBefore(events []*model.Event, end time.Time) []*model.Event {
	kept := make([]*model.Event, 0, len(events))
	for _, e := range events {
		if e.StartTime.Before(end) {
			kept = append(kept, e)
		}
	}
	return kept
}

// leaseKey names the interval bucket now falls in.
func (j *Job) leaseKey(now time.Time) string {
	return fmt.Sprintf("reminders_%d", now.Truncate(j.cfg.ReminderInterval).Unix())
}
