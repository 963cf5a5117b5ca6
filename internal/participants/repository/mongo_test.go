package repository_test

import (
	"context"
	"errors"
	"testing"

	participantserrors "eventrooms/internal/participants/errors"
	"eventrooms/internal/participants/repository"
	"eventrooms/internal/testutil/mongotest"
	"eventrooms/pkg/model"
)

func TestMongoParticipantRepository_EmailUniqueAmongLive(t *testing.T) {
	cfg := mongotest.Setup(t)
	repo := repository.NewMongoParticipantRepository(cfg)
	ctx := context.Background()

	first := &model.Participant{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+441234567890"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.Participant{FirstName: "Ada", LastName: "King", Email: "ada@example.com"}
	if err := repo.Create(ctx, dup); !errors.Is(err, participantserrors.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.ID != first.ID || found.Phone != first.Phone {
		t.Errorf("expected %+v, got %+v", first, found)
	}

	if err := repo.SoftDelete(ctx, first.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "ada@example.com"); !errors.Is(err, participantserrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Create(ctx, dup); err != nil {
		t.Fatalf("expected email to be free after delete, got %v", err)
	}
}

func TestMongoParticipantRepository_UpdateClearsPhone(t *testing.T) {
	cfg := mongotest.Setup(t)
	repo := repository.NewMongoParticipantRepository(cfg)
	ctx := context.Background()

	p := &model.Participant{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "+12025550123"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Phone = ""
	if err := repo.Update(ctx, p.ID, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Phone != "" {
		t.Errorf("expected phone to be cleared, got %q", got.Phone)
	}

	listed, err := repo.FindByIDs(ctx, []string{p.ID})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(listed) != 1 || listed[0].Email != "grace@example.com" {
		t.Errorf("unexpected participants %+v", listed)
	}
}

func TestMongoParticipantRepository_Reserve(t *testing.T) {
	cfg := mongotest.Setup(t)
	repo := repository.NewMongoParticipantRepository(cfg)
	ctx := context.Background()

	p := &model.Participant{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Reserve(ctx, p.ID); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.RegistrationVersion != 1 {
		t.Errorf("expected registration_version 1, got %d", got.RegistrationVersion)
	}

	if err := repo.SoftDelete(ctx, p.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := repo.Reserve(ctx, p.ID); !errors.Is(err, participantserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound reserving a deleted participant, got %v", err)
	}
}
