package service

import (
	"context"
	"errors"

	participantserrors "eventrooms/internal/participants/errors"
	"eventrooms/internal/participants/repository"
	"eventrooms/internal/participants/validator"
	"eventrooms/pkg/config"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/model"
	"eventrooms/pkg/sanitizer"
	"eventrooms/pkg/validation"
)

// Resolver maps registration identity details onto a stored participant.
// It joins whatever transaction ctx carries and never opens its own.
type Resolver struct {
	repo      repository.ParticipantRepository
	validator *validator.ParticipantValidator
	cfg       *config.Config
}

func NewResolver(repo repository.ParticipantRepository, validator *validator.ParticipantValidator, cfg *config.Config) *Resolver {
	return &Resolver{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// Resolve returns the participant owning email, creating one if none exists.
// An existing participant is returned only if every supplied field matches
// it after normalization. Its fields are never modified; only its
// registration_version is bumped so a concurrent delete conflicts.
func (r *Resolver) Resolve(ctx context.Context, firstName, lastName, email, phone string) (*model.Participant, bool, error) {
	candidate := &model.Participant{
		FirstName: sanitizer.NormalizeName(firstName),
		LastName:  sanitizer.NormalizeName(lastName),
		Email:     sanitizer.NormalizeEmail(email),
		Phone:     normalizePhone(phone, r.cfg.DefaultPhoneRegion),
	}
	if err := r.validator.Validate(candidate); err != nil {
		r.cfg.Log.Warn("Registration identity validation failed", "error", err)
		return nil, false, validation.ToAppError("Participant validation failed", err)
	}

	existing, err := r.repo.FindByEmail(ctx, candidate.Email)
	switch {
	case err == nil:
		if !sameIdentity(existing, candidate) {
			r.cfg.Log.Warn("Registration identity mismatch", "participant_id", existing.ID)
			return nil, false, apperrors.Conflict("Participant details do not match the existing record for this email").
				WithDetails(map[string]any{"email": candidate.Email}).
				WithCause(participantserrors.ErrIdentityMismatch)
		}
		if err := r.repo.Reserve(ctx, existing.ID); err != nil {
			return nil, false, apperrors.Storage("Failed to lock participant", err)
		}
		return existing, false, nil
	case !errors.Is(err, participantserrors.ErrNotFound):
		return nil, false, apperrors.Storage("Failed to look up participant", err)
	}

	if err := r.repo.Create(ctx, candidate); err != nil {
		if errors.Is(err, participantserrors.ErrDuplicateEmail) {
			return nil, false, duplicateEmail(candidate.Email)
		}
		return nil, false, apperrors.Storage("Failed to create participant", err)
	}

	r.cfg.Log.Info("Participant created from registration", "id", candidate.ID)
	return candidate, true, nil
}

func sameIdentity(a, b *model.Participant) bool {
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Phone == b.Phone
}

// normalizePhone falls back to the trimmed input when it cannot be parsed so
// the validator reports it instead of it being dropped.
func normalizePhone(phone, region string) string {
	if normalized := sanitizer.NormalizePhone(phone, region); normalized != "" {
		return normalized
	}
	return sanitizer.TrimAndNormalize(phone)
}

func duplicateEmail(email string) error {
	return apperrors.Conflict("Participant with this email already exists").
		WithDetails(map[string]any{"email": email}).
		WithCause(participantserrors.ErrDuplicateEmail)
}
