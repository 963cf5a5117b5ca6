package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventrooms/internal/availability"
	roomserrors "eventrooms/internal/rooms/errors"
	"eventrooms/internal/rooms/validator"
	"eventrooms/pkg/config"
	mongotx "eventrooms/pkg/db/mongo"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockRoomRepository struct {
	createFunc     func(ctx context.Context, room *model.Room) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFunc      func(ctx context.Context) (int64, error)
	updateFunc     func(ctx context.Context, id string, room *model.Room) error
	reserveFunc    func(ctx context.Context, id string) error
	softDeleteFunc func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return nil
}

func (m *mockRoomRepository) Reserve(ctx context.Context, id string) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockEventReader struct {
	findActiveByRoomFunc  func(ctx context.Context, roomID string) ([]*model.Event, error)
	findActiveInRangeFunc func(ctx context.Context, from, to time.Time) ([]*model.Event, error)
}

func (m *mockEventReader) FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Event, error) {
	if m.findActiveByRoomFunc != nil {
		return m.findActiveByRoomFunc(ctx, roomID)
	}
	return nil, nil
}

func (m *mockEventReader) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	if m.findActiveInRangeFunc != nil {
		return m.findActiveInRangeFunc(ctx, from, to)
	}
	return nil, nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

const roomID = "507f1f77bcf86cd799439011"

var fixedNow = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo *mockRoomRepository, events *mockEventReader) *roomService {
	log := logger.Nop()
	cfg := &config.Config{Log: log, Location: time.UTC}
	svc := NewRoomService(
		repo,
		events,
		availability.NewChecker(events, availability.PolicyStrict),
		validator.NewRoomValidator(log),
		cfg,
	).(*roomService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func existingRoom(capacity int) func(ctx context.Context, id string) (*model.Room, error) {
	return func(ctx context.Context, id string) (*model.Room, error) {
		return &model.Room{ID: id, Name: "Room A", Capacity: capacity}, nil
	}
}

func eventsEnding(ends ...time.Time) func(ctx context.Context, roomID string) ([]*model.Event, error) {
	return func(ctx context.Context, id string) ([]*model.Event, error) {
		var out []*model.Event
		for i, end := range ends {
			out = append(out, &model.Event{
				ID:        string(rune('a' + i)),
				RoomID:    id,
				StartTime: end.Add(-time.Hour),
				EndTime:   end,
			})
		}
		return out, nil
	}
}

// ────────────────────────────────────────────────
// Create / GetByID
// ────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		room     *model.Room
		repoErr  error
		wantCode string
	}{
		{"valid room", &model.Room{Name: "  Room   A ", Capacity: 50}, nil, ""},
		{"invalid capacity", &model.Room{Name: "Room A", Capacity: 0}, nil, apperrors.CodeValidation},
		{"storage failure", &model.Room{Name: "Room A", Capacity: 5}, errors.New("network"), apperrors.CodeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRoomRepository{}
			if tt.repoErr != nil {
				repo.createFunc = func(ctx context.Context, room *model.Room) error { return tt.repoErr }
			}
			svc := newTestService(repo, &mockEventReader{})

			err := svc.Create(context.Background(), tt.room)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.room.Name != "Room A" {
					t.Errorf("expected sanitized name 'Room A', got %q", tt.room.Name)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
		wantIs   error
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput, nil},
		{"not found", roomID, roomserrors.ErrNotFound, apperrors.CodeNotFound, roomserrors.ErrNotFound},
		{"invalid id", "xyz", roomserrors.ErrInvalidID, apperrors.CodeInvalidInput, roomserrors.ErrInvalidID},
		{"storage", roomID, errors.New("boom"), apperrors.CodeStorage, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRoomRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) { return nil, tt.repoErr },
			}
			svc := newTestService(repo, &mockEventReader{})

			_, err := svc.GetByID(context.Background(), tt.id)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v)", tt.wantIs)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Lifecycle guard
// ────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		reserveErr  error
		events      func(ctx context.Context, roomID string) ([]*model.Event, error)
		wantIs      error
		wantCode    string
		wantDeleted bool
	}{
		{
			name:        "no events",
			wantDeleted: true,
		},
		{
			name:        "only past events",
			events:      eventsEnding(fixedNow.Add(-time.Hour), fixedNow),
			wantDeleted: true,
		},
		{
			name:     "future event blocks",
			events:   eventsEnding(fixedNow.Add(-time.Hour), fixedNow.Add(time.Minute)),
			wantIs:   roomserrors.ErrHasActiveBookings,
			wantCode: apperrors.CodeConflict,
		},
		{
			name:       "missing or already deleted room",
			reserveErr: roomserrors.ErrNotFound,
			wantIs:     roomserrors.ErrNotFound,
			wantCode:   apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			repo := &mockRoomRepository{
				reserveFunc: func(ctx context.Context, id string) error { return tt.reserveErr },
				softDeleteFunc: func(ctx context.Context, id string) error {
					deleted = true
					return nil
				},
			}
			svc := newTestService(repo, &mockEventReader{findActiveByRoomFunc: tt.events})

			err := svc.Delete(context.Background(), roomID)
			if tt.wantIs == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantIs != nil {
				if !errors.Is(err, tt.wantIs) {
					t.Errorf("expected %v, got %v", tt.wantIs, err)
				}
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("expected code %s, got %v", tt.wantCode, err)
				}
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestUpdateCapacity(t *testing.T) {
	future := eventsEnding(fixedNow.Add(24 * time.Hour))

	tests := []struct {
		name        string
		current     int
		newCapacity int
		events      func(ctx context.Context, roomID string) ([]*model.Event, error)
		wantIs      error
		wantCode    string
		wantUpdated bool
		wantReserve bool
	}{
		{"increase with active events", 10, 20, future, nil, "", true, false},
		{"shrink without events", 10, 5, nil, nil, "", true, true},
		{"shrink with active events", 10, 5, future, roomserrors.ErrCapacityShrinkBlocked, apperrors.CodeConflict, false, true},
		{"same capacity", 10, 10, future, nil, "", true, false},
		{"invalid capacity", 10, 0, nil, nil, apperrors.CodeValidation, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, reserved := false, false
			repo := &mockRoomRepository{
				findByIDFunc: existingRoom(tt.current),
				reserveFunc: func(ctx context.Context, id string) error {
					reserved = true
					return nil
				},
				updateFunc: func(ctx context.Context, id string, room *model.Room) error {
					updated = true
					if room.Capacity != tt.newCapacity {
						t.Errorf("expected capacity %d, got %d", tt.newCapacity, room.Capacity)
					}
					return nil
				},
			}
			svc := newTestService(repo, &mockEventReader{findActiveByRoomFunc: tt.events})

			err := svc.UpdateCapacity(context.Background(), roomID, tt.newCapacity)
			if tt.wantCode == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantCode != "" && !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v, got %v", tt.wantIs, err)
			}
			if updated != tt.wantUpdated {
				t.Errorf("updated = %v, want %v", updated, tt.wantUpdated)
			}
			if reserved != tt.wantReserve {
				t.Errorf("reserved = %v, want %v", reserved, tt.wantReserve)
			}
		})
	}
}

func TestUpdate_MergesName(t *testing.T) {
	var saved *model.Room
	repo := &mockRoomRepository{
		findByIDFunc: existingRoom(30),
		updateFunc: func(ctx context.Context, id string, room *model.Room) error {
			saved = room
			return nil
		},
	}
	svc := newTestService(repo, &mockEventReader{})

	if err := svc.Update(context.Background(), roomID, &model.RoomUpdate{Name: " Board   Room "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Name != "Board Room" || saved.Capacity != 30 {
		t.Errorf("unexpected saved room %+v", saved)
	}
}

// ────────────────────────────────────────────────
// ListAvailable
// ────────────────────────────────────────────────

func TestListAvailable(t *testing.T) {
	start := fixedNow.Add(time.Hour)
	end := start.Add(2 * time.Hour)
	rooms := []*model.Room{{ID: "a", Name: "A", Capacity: 5}, {ID: "b", Name: "B", Capacity: 5}}

	t.Run("invalid interval", func(t *testing.T) {
		svc := newTestService(&mockRoomRepository{}, &mockEventReader{})
		_, err := svc.ListAvailable(context.Background(), end, start)
		if !apperrors.HasCode(err, apperrors.CodeInvalidInterval) {
			t.Errorf("expected INVALID_INTERVAL, got %v", err)
		}
	})

	t.Run("some rooms free", func(t *testing.T) {
		repo := &mockRoomRepository{
			findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Room, error) { return rooms, nil },
		}
		events := &mockEventReader{
			findActiveInRangeFunc: func(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
				return []*model.Event{{ID: "e", RoomID: "a", StartTime: start, EndTime: end}}, nil
			},
		}
		svc := newTestService(repo, events)

		got, err := svc.ListAvailable(context.Background(), start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "b" {
			t.Errorf("expected only room b, got %v", got)
		}
	})

	t.Run("nothing free signals", func(t *testing.T) {
		repo := &mockRoomRepository{
			findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Room, error) { return rooms, nil },
		}
		events := &mockEventReader{
			findActiveInRangeFunc: func(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
				return []*model.Event{
					{ID: "e1", RoomID: "a", StartTime: start, EndTime: end},
					{ID: "e2", RoomID: "b", StartTime: start, EndTime: end},
				}, nil
			},
		}
		svc := newTestService(repo, events)

		got, err := svc.ListAvailable(context.Background(), start, end)
		if !errors.Is(err, roomserrors.ErrNoRoomsAvailable) {
			t.Fatalf("expected ErrNoRoomsAvailable, got %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", got)
		}
	})
}

func TestGetAll(t *testing.T) {
	repo := &mockRoomRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
			return []*model.Room{{ID: "a"}, {ID: "b"}}, nil
		},
		countFunc: func(ctx context.Context) (int64, error) { return 7, nil },
	}
	svc := newTestService(repo, &mockEventReader{})

	rooms, total, err := svc.GetAll(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 || total != 7 {
		t.Errorf("expected 2 rooms and total 7, got %d/%d", len(rooms), total)
	}

	repo.countFunc = func(ctx context.Context) (int64, error) { return 0, errors.New("down") }
	if _, _, err := svc.GetAll(context.Background(), 2, 0); !apperrors.HasCode(err, apperrors.CodeStorage) {
		t.Errorf("expected STORAGE_ERROR, got %v", err)
	}
}
