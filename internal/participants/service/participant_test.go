package service

import (
	"context"
	"errors"
	"testing"
	"time"

	participantserrors "eventrooms/internal/participants/errors"
	"eventrooms/internal/participants/validator"
	"eventrooms/internal/testutil/memstore"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/model"
)

var fixedNow = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memstore.Store
	svc   *participantService
	ann   *model.Participant
	bob   *model.Participant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	cfg := testConfig()

	svc := NewParticipantService(
		store.Participants(),
		store.Events(),
		store.Registrations(),
		validator.NewParticipantValidator(cfg.Log),
		cfg,
	).(*participantService)
	svc.now = func() time.Time { return fixedNow }

	ann := &model.Participant{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"}
	bob := &model.Participant{FirstName: "Bob", LastName: "Stone", Email: "bob@example.com"}
	for _, p := range []*model.Participant{ann, bob} {
		if err := store.Participants().Create(ctx, p); err != nil {
			t.Fatalf("seed participant: %v", err)
		}
	}

	return &fixture{store: store, svc: svc, ann: ann, bob: bob}
}

func (f *fixture) register(t *testing.T, p *model.Participant, end time.Time) *model.Event {
	t.Helper()
	ctx := context.Background()
	event := &model.Event{Name: "Conf", RoomID: "507f1f77bcf86cd799439011", StartTime: end.Add(-time.Hour), EndTime: end}
	if err := f.store.Events().Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := f.store.Registrations().Create(ctx, &model.Registration{EventID: event.ID, ParticipantID: p.ID}); err != nil {
		t.Fatalf("seed registration: %v", err)
	}
	return event
}

func TestUpdate(t *testing.T) {
	phone := "8 912 345 67 89"
	badPhone := "123"
	empty := ""

	tests := []struct {
		name      string
		updates   *model.ParticipantUpdate
		wantCode  string
		wantIs    error
		wantEmail string
		wantPhone string
	}{
		{name: "rename", updates: &model.ParticipantUpdate{FirstName: "  Anna "}, wantEmail: "ann@example.com"},
		{name: "new email normalized", updates: &model.ParticipantUpdate{Email: " ANNA@example.com"}, wantEmail: "anna@example.com"},
		{name: "padded name and email", updates: &model.ParticipantUpdate{FirstName: "  Anna  ", Email: "  Anna@Example.COM  "}, wantEmail: "anna@example.com"},
		{name: "phone normalized", updates: &model.ParticipantUpdate{Phone: &phone}, wantEmail: "ann@example.com", wantPhone: "+79123456789"},
		{name: "phone cleared", updates: &model.ParticipantUpdate{Phone: &empty}, wantEmail: "ann@example.com"},
		{name: "email owned by another", updates: &model.ParticipantUpdate{Email: "bob@example.com"}, wantCode: apperrors.CodeConflict, wantIs: participantserrors.ErrDuplicateEmail},
		{name: "invalid phone", updates: &model.ParticipantUpdate{Phone: &badPhone}, wantCode: apperrors.CodeValidation},
		{name: "invalid email", updates: &model.ParticipantUpdate{Email: "nope"}, wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			err := f.svc.Update(context.Background(), f.ann.ID, tt.updates)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("expected %s, got %v", tt.wantCode, err)
				}
				if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
					t.Errorf("expected errors.Is(%v), got %v", tt.wantIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, _ := f.svc.GetByID(context.Background(), f.ann.ID)
			if got.Email != tt.wantEmail || got.Phone != tt.wantPhone {
				t.Errorf("expected %q %q, got %q %q", tt.wantEmail, tt.wantPhone, got.Email, got.Phone)
			}
		})
	}
}

func TestUpdate_AcceptsWhatResolverAccepts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resolver := newTestResolver(f.store)
	raw := "  Cara@Example.com "

	resolved, _, err := resolver.Resolve(ctx, "Cara", "Diaz", raw, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := f.svc.Delete(ctx, resolved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := f.svc.Update(ctx, f.ann.ID, &model.ParticipantUpdate{Email: raw}); err != nil {
		t.Fatalf("Update rejected input the resolver accepted: %v", err)
	}
	got, _ := f.svc.GetByID(ctx, f.ann.ID)
	if got.Email != resolved.Email {
		t.Errorf("expected %q stored like the resolver does, got %q", resolved.Email, got.Email)
	}
}

type reservingRepository struct {
	memstore.Participants
	reserved *[]string
}

func (r reservingRepository) Reserve(ctx context.Context, id string) error {
	*r.reserved = append(*r.reserved, id)
	return r.Participants.Reserve(ctx, id)
}

func TestDelete_ReservesParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var reserved []string
	f.svc.repo = reservingRepository{Participants: f.store.Participants(), reserved: &reserved}

	if err := f.svc.Delete(ctx, f.bob.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(reserved) != 1 || reserved[0] != f.bob.ID {
		t.Errorf("expected delete to reserve %s, got %v", f.bob.ID, reserved)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked by active event", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, f.ann, fixedNow.Add(time.Hour))

		err := f.svc.Delete(ctx, f.ann.ID)
		if !errors.Is(err, participantserrors.ErrHasActiveEvents) {
			t.Errorf("expected ErrHasActiveEvents, got %v", err)
		}
	})

	t.Run("past and deleted events do not block", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, f.ann, fixedNow.Add(-time.Hour))
		cancelled := f.register(t, f.ann, fixedNow.Add(time.Hour))
		if err := f.store.Events().SoftDelete(ctx, cancelled.ID); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}

		if err := f.svc.Delete(ctx, f.ann.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.GetByID(ctx, f.ann.ID); !errors.Is(err, participantserrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Delete(ctx, "65a1b2c3d4e5f60718293a4b")
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Errorf("expected %s, got %v", apperrors.CodeNotFound, err)
		}
	})

	t.Run("email reusable after delete", func(t *testing.T) {
		f := newFixture(t)
		if err := f.svc.Delete(ctx, f.bob.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if err := f.svc.Update(ctx, f.ann.ID, &model.ParticipantUpdate{Email: "bob@example.com"}); err != nil {
			t.Errorf("expected freed email to be reusable, got %v", err)
		}
	})
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	active := f.register(t, f.ann, fixedNow.Add(2*time.Hour))
	f.register(t, f.ann, fixedNow.Add(-time.Hour))
	f.register(t, f.bob, fixedNow.Add(time.Hour))

	events, err := f.svc.ListEvents(ctx, f.ann.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != active.ID {
		t.Errorf("expected only %s, got %v", active.ID, events)
	}

	if _, err := f.svc.ListEvents(ctx, ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected %s for empty id, got %v", apperrors.CodeInvalidInput, err)
	}
}
