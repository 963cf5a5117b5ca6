package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	eventserrors "eventrooms/internal/events/errors"
	apperrors "eventrooms/pkg/errors"
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockEventService struct {
	createFunc      func(ctx context.Context, event *model.Event) error
	getUpcomingFunc func(ctx context.Context, from, to time.Time) ([]*model.Event, error)
	registerFunc    func(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error)
	participantsFn  func(ctx context.Context, eventID string) ([]*model.Participant, error)
}

func (m *mockEventService) Create(ctx context.Context, event *model.Event) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, event)
	}
	return nil
}

func (m *mockEventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return &model.Event{ID: id}, nil
}

func (m *mockEventService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error) {
	return []*model.Event{}, 0, nil
}

func (m *mockEventService) GetBetween(ctx context.Context, start, end time.Time) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockEventService) GetUpcoming(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	if m.getUpcomingFunc != nil {
		return m.getUpcomingFunc(ctx, from, to)
	}
	return []*model.Event{}, nil
}

func (m *mockEventService) Update(ctx context.Context, id string, updates *model.EventUpdate) error {
	return nil
}

func (m *mockEventService) SoftDelete(ctx context.Context, id string) error {
	return nil
}

func (m *mockEventService) RegisterParticipant(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, eventID, req)
	}
	return &model.RegistrationResult{EventID: eventID}, nil
}

func (m *mockEventService) ListParticipants(ctx context.Context, eventID string) ([]*model.Participant, error) {
	if m.participantsFn != nil {
		return m.participantsFn(ctx, eventID)
	}
	return []*model.Participant{}, nil
}

func newRouter(svc *mockEventService) *httprouter.Router {
	router := httprouter.New()
	NewEventHandler(svc, logger.Nop()).RegisterRoutes(router)
	return router
}

func TestCreate_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"created", nil, http.StatusCreated, ""},
		{"invalid interval", apperrors.InvalidInterval("bad").WithCause(eventserrors.ErrInvalidInterval), http.StatusBadRequest, apperrors.CodeInvalidInterval},
		{"room unavailable", apperrors.Conflict("taken").WithCause(eventserrors.ErrRoomUnavailable), http.StatusConflict, apperrors.CodeConflict},
		{"room not found", apperrors.NotFoundWithID("Room", "x"), http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{
				createFunc: func(ctx context.Context, event *model.Event) error { return tt.err },
			}
			rec := httptest.NewRecorder()
			body := `{"name":"Conf","room_id":"507f1f77bcf86cd799439011","start_time":"2030-01-01T10:00:00Z","end_time":"2030-01-01T12:00:00Z"}`

			newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantCode == "" {
				return
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestGetUpcoming_OptionalRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &mockEventService{
		getUpcomingFunc: func(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/upcoming?start=2030-01-01T00:00:00Z", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFrom.IsZero() || !gotTo.IsZero() {
		t.Errorf("expected only start to be set, got %s..%s", gotFrom, gotTo)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty list in body, got %s", rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var gotID string
		svc := &mockEventService{
			registerFunc: func(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
				gotID = eventID
				return &model.RegistrationResult{
					EventID:     eventID,
					Participant: &model.Participant{ID: "p1", Email: req.Email},
					Created:     true,
				}, nil
			},
		}
		rec := httptest.NewRecorder()
		body := `{"first_name":"Ann","last_name":"Lee","email":"ann@example.com"}`

		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events/id/e1/register", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if gotID != "e1" {
			t.Errorf("expected event id e1, got %q", gotID)
		}
		if !strings.Contains(rec.Body.String(), `"participant_created":true`) {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("already registered", func(t *testing.T) {
		svc := &mockEventService{
			registerFunc: func(ctx context.Context, eventID string, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
				return nil, apperrors.Conflict("dup").WithCause(eventserrors.ErrAlreadyRegistered)
			},
		}
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events/id/e1/register", strings.NewReader(`{}`)))

		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("bad body", func(t *testing.T) {
		rec := httptest.NewRecorder()

		newRouter(&mockEventService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events/id/e1/register", strings.NewReader(`[`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestListParticipants_NotFound(t *testing.T) {
	svc := &mockEventService{
		participantsFn: func(ctx context.Context, eventID string) ([]*model.Participant, error) {
			return nil, apperrors.NotFoundWithID("Event", eventID).WithCause(eventserrors.ErrNotFound)
		},
	}
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/id/e1/participants", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
