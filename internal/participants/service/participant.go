package service

import (
	"context"
	"errors"
	"time"

	participantserrors "eventrooms/internal/participants/errors"
	"eventrooms/internal/participants/repository"
	"eventrooms/internal/participants/validator"
	"eventrooms/pkg/config"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/model"
	"eventrooms/pkg/sanitizer"
	"eventrooms/pkg/validation"
)

type EventReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error)
}

type RegistrationReader interface {
	FindEventIDs(ctx context.Context, participantID string) ([]string, error)
}

type ParticipantService interface {
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	Update(ctx context.Context, id string, updates *model.ParticipantUpdate) error
	Delete(ctx context.Context, id string) error
	ListEvents(ctx context.Context, id string) ([]*model.Event, error)
}

type participantService struct {
	repo          repository.ParticipantRepository
	events        EventReader
	registrations RegistrationReader
	validator     *validator.ParticipantValidator
	cfg           *config.Config
	now           func() time.Time
}

func NewParticipantService(
	repo repository.ParticipantRepository,
	events EventReader,
	registrations RegistrationReader,
	validator *validator.ParticipantValidator,
	cfg *config.Config,
) ParticipantService {
	return &participantService{
		repo:          repo,
		events:        events,
		registrations: registrations,
		validator:     validator,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *participantService) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Participant ID cannot be empty")
	}

	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve participant")
	}

	return participant, nil
}

func (s *participantService) Update(ctx context.Context, id string, updates *model.ParticipantUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Participant ID cannot be empty")
	}
	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Participant update validation failed", "id", id, "error", err)
		return validation.ToAppError("Invalid update input", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check participant existence")
		}

		merged := s.mergeParticipantUpdates(existing, updates)
		if err := s.validator.Validate(merged); err != nil {
			s.cfg.Log.Warn("Participant validation failed", "id", id, "error", err)
			return validation.ToAppError("Participant validation failed", err)
		}

		if merged.Email != existing.Email {
			owner, err := s.repo.FindByEmail(sessCtx, merged.Email)
			switch {
			case err == nil && owner.ID != id:
				return duplicateEmail(merged.Email)
			case err != nil && !errors.Is(err, participantserrors.ErrNotFound):
				return apperrors.Storage("Failed to check email uniqueness", err)
			}
		}

		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, participantserrors.ErrDuplicateEmail) {
				return duplicateEmail(merged.Email)
			}
			return s.mapRepoError(err, id, "Failed to update participant")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update participant", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Participant updated successfully", "id", id)
	return nil
}

func (s *participantService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Participant ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		// Reserve also proves the participant exists and conflicts with a
		// concurrent registration.
		if err := s.repo.Reserve(sessCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to lock participant")
		}

		active, err := s.activeEvents(sessCtx, id)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			ids := make([]string, 0, len(active))
			for _, e := range active {
				ids = append(ids, e.ID)
			}
			return apperrors.Conflict("Participant is registered for active events").
				WithDetails(map[string]any{"participant_id": id, "active_events": ids}).
				WithCause(participantserrors.ErrHasActiveEvents)
		}

		if err := s.repo.SoftDelete(sessCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to delete participant")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete participant", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Participant deleted successfully", "id", id)
	return nil
}

func (s *participantService) ListEvents(ctx context.Context, id string) ([]*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Participant ID cannot be empty")
	}

	var events []*model.Event
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if _, err := s.repo.FindByID(sessCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to load participant")
		}

		var err error
		events, err = s.activeEvents(sessCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// activeEvents returns the live, not yet ended events id is registered for.
func (s *participantService) activeEvents(ctx context.Context, id string) ([]*model.Event, error) {
	eventIDs, err := s.registrations.FindEventIDs(ctx, id)
	if err != nil {
		return nil, apperrors.Storage("Failed to load registrations", err)
	}

	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, apperrors.Storage("Failed to load events", err)
	}

	now := s.now()
	active := []*model.Event{}
	for _, e := range events {
		if e.IsActive(now) {
			active = append(active, e)
		}
	}
	return active, nil
}

func (s *participantService) sanitizeUpdate(updates *model.ParticipantUpdate) {
	updates.FirstName = sanitizer.NormalizeName(updates.FirstName)
	updates.LastName = sanitizer.NormalizeName(updates.LastName)
	updates.Email = sanitizer.NormalizeEmail(updates.Email)
	if updates.Phone != nil {
		phone := normalizePhone(*updates.Phone, s.cfg.DefaultPhoneRegion)
		updates.Phone = &phone
	}
}

// mergeParticipantUpdates expects updates to be sanitized already.
func (s *participantService) mergeParticipantUpdates(existing *model.Participant, updates *model.ParticipantUpdate) *model.Participant {
	merged := *existing

	if updates.FirstName != "" {
		merged.FirstName = updates.FirstName
	}
	if updates.LastName != "" {
		merged.LastName = updates.LastName
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != nil {
		merged.Phone = *updates.Phone
	}

	return &merged
}

func (s *participantService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, participantserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Participant", id).WithCause(participantserrors.ErrNotFound)
	case errors.Is(err, participantserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid participant ID format").WithCause(participantserrors.ErrInvalidID)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Storage(message, err)
	}
}
