package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventrooms/internal/availability"
	eventserrors "eventrooms/internal/events/errors"
	"eventrooms/internal/events/repository"
	"eventrooms/internal/events/validator"
	roomserrors "eventrooms/internal/rooms/errors"
	"eventrooms/pkg/config"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/model"
	"eventrooms/pkg/sanitizer"
	"eventrooms/pkg/validation"
)

// RoomReserver bumps the room's booking version inside the caller's
// transaction. It fails with the rooms ErrNotFound for absent or deleted rooms.
type RoomReserver interface {
	Reserve(ctx context.Context, id string) error
}

type ParticipantReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error)
}

// IdentityResolver finds or creates the participant behind a registration.
type IdentityResolver interface {
	Resolve(ctx context.Context, firstName, lastName, email, phone string) (*model.Participant, bool, error)
}

type EventService interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error)
	GetBetween(ctx context.Context, start, end time.Time) ([]*model.Event, error)
	// GetUpcoming lists events starting in [from, to]. Zero bounds default to
	// now and now plus the reminder window.
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*model.Event, error)
	Update(ctx context.Context, id string, updates *model.EventUpdate) error
	SoftDelete(ctx context.Context, id string) error
	RegisterParticipant(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error)
	ListParticipants(ctx context.Context, eventID string) ([]*model.Participant, error)
}

type eventService struct {
	repo          repository.EventRepository
	registrations repository.RegistrationRepository
	rooms         RoomReserver
	participants  ParticipantReader
	resolver      IdentityResolver
	checker       *availability.Checker
	validator     *validator.EventValidator
	cfg           *config.Config
	now           func() time.Time
}

func NewEventService(
	repo repository.EventRepository,
	registrations repository.RegistrationRepository,
	rooms RoomReserver,
	participants ParticipantReader,
	resolver IdentityResolver,
	checker *availability.Checker,
	validator *validator.EventValidator,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:          repo,
		registrations: registrations,
		rooms:         rooms,
		participants:  participants,
		resolver:      resolver,
		checker:       checker,
		validator:     validator,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, event *model.Event) error {
	event.ID = ""
	s.sanitize(event)
	if err := s.validate(event); err != nil {
		return err
	}
	if err := s.checkInterval(event); err != nil {
		return err
	}
	if event.StartTime.Before(s.startOfToday()) {
		s.cfg.Log.Warn("Event start is in the past", "start_time", event.StartTime)
		return apperrors.InvalidInterval("Start time cannot be before the current day").WithCause(eventserrors.ErrPastStart)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.reserveSlot(sessCtx, event, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, event); err != nil {
			return apperrors.Storage("Failed to create event", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create event", "room_id", event.RoomID, "error", err)
		return err
	}

	s.cfg.Log.Info("Event created successfully",
		"id", event.ID,
		"room_id", event.RoomID,
		"start_time", event.StartTime,
		"end_time", event.EndTime,
	)
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve event")
	}

	return event, nil
}

func (s *eventService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error) {
	var count int64
	var events []*model.Event
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count events", "error", errCount)
			errCount = apperrors.Storage("Failed to count events", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list events", "error", errFind)
			errFind = apperrors.Storage("Failed to retrieve events", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return events, count, nil
}

func (s *eventService) GetBetween(ctx context.Context, start, end time.Time) ([]*model.Event, error) {
	if end.Before(start) {
		return nil, apperrors.InvalidInterval("End of the range must not be before its start").WithCause(eventserrors.ErrInvalidInterval)
	}

	events, err := s.repo.FindStartingBetween(ctx, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to list events between dates", "start", start, "end", end, "error", err)
		return nil, apperrors.Storage("Failed to retrieve events", err)
	}
	return events, nil
}

func (s *eventService) GetUpcoming(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from.Add(s.cfg.ReminderWindow)
	}
	return s.GetBetween(ctx, from, to)
}

func (s *eventService) Update(ctx context.Context, id string, updates *model.EventUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Event update validation failed", "id", id, "error", err)
		return validation.ToAppError("Invalid update input", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check event existence")
		}

		merged := s.mergeEventUpdates(existing, updates)
		s.sanitize(merged)
		if err := s.validate(merged); err != nil {
			return err
		}
		if err := s.checkInterval(merged); err != nil {
			return err
		}

		if slotChanged(existing, merged) {
			if err := s.reserveSlot(sessCtx, merged, id); err != nil {
				return err
			}
		}

		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return s.mapRepoError(err, id, "Failed to update event")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update event", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Event updated successfully", "id", id)
	return nil
}

func (s *eventService) SoftDelete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.repo.SoftDelete(sessCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to delete event")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete event", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Event deleted successfully", "id", id)
	return nil
}

func (s *eventService) RegisterParticipant(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
	if eventID == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Registration body is required")
	}

	var result *model.RegistrationResult
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		event, err := s.repo.FindByID(sessCtx, eventID)
		if err != nil {
			return s.mapRepoError(err, eventID, "Failed to load event")
		}
		if event.EndTime.Before(s.now()) {
			return apperrors.Conflict("Cannot register for an event that has already ended").
				WithDetails(map[string]any{"event_id": eventID, "end_time": event.EndTime}).
				WithCause(eventserrors.ErrEventEnded)
		}

		participant, created, err := s.resolver.Resolve(sessCtx, req.FirstName, req.LastName, req.Email, req.Phone)
		if err != nil {
			return err
		}

		exists, err := s.registrations.Exists(sessCtx, eventID, participant.ID)
		if err != nil {
			return apperrors.Storage("Failed to check registration", err)
		}
		if exists {
			return alreadyRegistered(eventID, participant.ID)
		}

		registration := &model.Registration{EventID: eventID, ParticipantID: participant.ID}
		if err := s.registrations.Create(sessCtx, registration); err != nil {
			if errors.Is(err, eventserrors.ErrAlreadyRegistered) {
				return alreadyRegistered(eventID, participant.ID)
			}
			return apperrors.Storage("Failed to register participant", err)
		}

		result = &model.RegistrationResult{
			EventID:     eventID,
			Participant: participant,
			Created:     created,
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to register participant", "event_id", eventID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Participant registered successfully",
		"event_id", eventID,
		"participant_id", result.Participant.ID,
		"participant_created", result.Created,
	)
	return result, nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID string) ([]*model.Participant, error) {
	if eventID == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	var participants []*model.Participant
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if _, err := s.repo.FindByID(sessCtx, eventID); err != nil {
			return s.mapRepoError(err, eventID, "Failed to load event")
		}

		ids, err := s.registrations.FindParticipantIDs(sessCtx, eventID)
		if err != nil {
			return apperrors.Storage("Failed to load registrations", err)
		}

		participants, err = s.participants.FindByIDs(sessCtx, ids)
		if err != nil {
			return apperrors.Storage("Failed to load participants", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if participants == nil {
		participants = []*model.Participant{}
	}
	return participants, nil
}

// --- Helpers ---

// reserveSlot serializes on the room and rejects the slot if another live
// event in that room overlaps it. excludeID is the event being moved.
func (s *eventService) reserveSlot(ctx context.Context, event *model.Event, excludeID string) error {
	if err := s.rooms.Reserve(ctx, event.RoomID); err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Room", event.RoomID).WithCause(roomserrors.ErrNotFound)
		case errors.Is(err, roomserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid room ID format").WithCause(roomserrors.ErrInvalidID)
		default:
			return apperrors.Storage("Failed to lock room", err)
		}
	}

	conflicts, err := s.checker.Conflicts(ctx, event.RoomID, event.StartTime, event.EndTime, excludeID)
	if err != nil {
		return apperrors.Storage("Failed to check room availability", err)
	}
	if len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.ID)
		}
		first := conflicts[0]
		s.cfg.Log.Warn("Room unavailable", "room_id", event.RoomID, "conflicting_events", ids)
		return apperrors.Conflict(fmt.Sprintf(
			"Room is already booked (%s - %s)",
			first.StartTime.Format(time.RFC3339),
			first.EndTime.Format(time.RFC3339),
		)).WithDetails(map[string]any{
			"room_id":            event.RoomID,
			"conflicting_events": ids,
		}).WithCause(eventserrors.ErrRoomUnavailable)
	}
	return nil
}

func (s *eventService) checkInterval(event *model.Event) error {
	if !event.EndTime.After(event.StartTime) {
		s.cfg.Log.Warn("Event interval is invalid", "start_time", event.StartTime, "end_time", event.EndTime)
		return apperrors.InvalidInterval("End time must be after start time").WithCause(eventserrors.ErrInvalidInterval)
	}
	return nil
}

func (s *eventService) startOfToday() time.Time {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := s.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

func slotChanged(existing, merged *model.Event) bool {
	return existing.RoomID != merged.RoomID ||
		!existing.StartTime.Equal(merged.StartTime) ||
		!existing.EndTime.Equal(merged.EndTime)
}

func alreadyRegistered(eventID, participantID string) error {
	return apperrors.Conflict("Participant is already registered for this event").
		WithDetails(map[string]any{"event_id": eventID, "participant_id": participantID}).
		WithCause(eventserrors.ErrAlreadyRegistered)
}

func (s *eventService) sanitize(event *model.Event) {
	event.Name = sanitizer.NormalizeName(event.Name)
	event.StartTime = event.StartTime.UTC().Truncate(time.Millisecond)
	event.EndTime = event.EndTime.UTC().Truncate(time.Millisecond)
}

func (s *eventService) mergeEventUpdates(existing *model.Event, updates *model.EventUpdate) *model.Event {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}

	return &merged
}

func (s *eventService) validate(event *model.Event) error {
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "error", err)
		return validation.ToAppError("Event validation failed", err)
	}
	return nil
}

func (s *eventService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Event", id).WithCause(eventserrors.ErrNotFound)
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event ID format").WithCause(eventserrors.ErrInvalidID)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Storage(message, err)
	}
}
