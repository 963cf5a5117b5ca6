package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventrooms/internal/availability"
	roomserrors "eventrooms/internal/rooms/errors"
	"eventrooms/internal/rooms/repository"
	"eventrooms/internal/rooms/validator"
	"eventrooms/pkg/config"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/model"
	"eventrooms/pkg/sanitizer"
	"eventrooms/pkg/validation"
)

// EventReader is the slice of the event repository the room guard reads.
type EventReader interface {
	FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Event, error)
}

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	UpdateCapacity(ctx context.Context, id string, capacity int) error
	Delete(ctx context.Context, id string) error
	// ListAvailable returns rooms free for [start, end). When none are free it
	// returns an empty slice together with ErrNoRoomsAvailable.
	ListAvailable(ctx context.Context, start, end time.Time) ([]*model.Room, error)
}

type roomService struct {
	repo      repository.RoomRepository
	events    EventReader
	checker   *availability.Checker
	validator *validator.RoomValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewRoomService(
	repo repository.RoomRepository,
	events EventReader,
	checker *availability.Checker,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		events:    events,
		checker:   checker,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.ID = ""
	s.sanitize(room)
	if err := s.validate(room); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.repo.Create(sessCtx, room); err != nil {
			return apperrors.Storage("Failed to create room", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return err
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"name", room.Name,
		"capacity", room.Capacity,
	)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve room")
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Storage("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Storage("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return validation.ToAppError("Invalid update input", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check room existence")
		}

		merged := s.mergeRoomUpdates(existing, updates)
		s.sanitize(merged)
		if err := s.validate(merged); err != nil {
			return err
		}

		if merged.Capacity < existing.Capacity {
			if err := s.guardActiveEvents(sessCtx, id, roomserrors.ErrCapacityShrinkBlocked); err != nil {
				return err
			}
		}

		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return s.mapRepoError(err, id, "Failed to update room")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Room updated successfully", "id", id)
	return nil
}

func (s *roomService) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	return s.Update(ctx, id, &model.RoomUpdate{Capacity: &capacity})
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.guardActiveEvents(sessCtx, id, roomserrors.ErrHasActiveBookings); err != nil {
			return err
		}
		if err := s.repo.SoftDelete(sessCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to delete room")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) ListAvailable(ctx context.Context, start, end time.Time) ([]*model.Room, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidInterval("End time must be after start time").WithCause(roomserrors.ErrInvalidInterval)
	}

	var available []*model.Room
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		rooms, err := s.repo.FindAll(sessCtx, 0, 0)
		if err != nil {
			return apperrors.Storage("Failed to retrieve rooms", err)
		}
		available, err = s.checker.FilterAvailable(sessCtx, rooms, start, end)
		if err != nil {
			return apperrors.Storage("Failed to check room availability", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to list available rooms", "start", start, "end", end, "error", err)
		return nil, err
	}

	if len(available) == 0 {
		s.cfg.Log.Info("No rooms available", "start", start, "end", end)
		return []*model.Room{}, roomserrors.ErrNoRoomsAvailable
	}

	s.cfg.Log.Debug("Available rooms listed", "start", start, "end", end, "count", len(available))
	return available, nil
}

// --- Helpers ---

// guardActiveEvents reserves the room, which also proves it exists, then
// fails with blocked if any live event has not ended yet.
func (s *roomService) guardActiveEvents(ctx context.Context, id string, blocked error) error {
	if err := s.repo.Reserve(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to lock room")
	}

	events, err := s.events.FindActiveByRoom(ctx, id)
	if err != nil {
		return apperrors.Storage("Failed to check room events", err)
	}

	now := s.now()
	active := 0
	for _, e := range events {
		if e.IsActive(now) {
			active++
		}
	}
	if active > 0 {
		s.cfg.Log.Warn("Room change blocked by active events", "id", id, "active_events", active)
		return apperrors.Conflict(blocked.Error()).
			WithDetails(map[string]any{"room_id": id, "active_events": active}).
			WithCause(blocked)
	}
	return nil
}

func (s *roomService) sanitize(room *model.Room) {
	room.Name = sanitizer.NormalizeName(room.Name)
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	return &merged
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return validation.ToAppError("Room validation failed", err)
	}
	return nil
}

func (s *roomService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id).WithCause(roomserrors.ErrNotFound)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format").WithCause(roomserrors.ErrInvalidID)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Storage(message, err)
	}
}
