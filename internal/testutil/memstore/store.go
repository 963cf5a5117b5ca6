// Package memstore keeps rooms, events, participants and registrations in
// memory behind the same method sets as the Mongo repositories. Transactions
// are serialized and roll back on error.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	eventserrors "eventrooms/internal/events/errors"
	participantserrors "eventrooms/internal/participants/errors"
	roomserrors "eventrooms/internal/rooms/errors"
	mongotx "eventrooms/pkg/db/mongo"
	"eventrooms/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	rooms         map[string]model.Room
	events        map[string]model.Event
	participants  map[string]model.Participant
	registrations map[string]model.Registration
}

func New() *Store {
	return &Store{
		rooms:         map[string]model.Room{},
		events:        map[string]model.Event{},
		participants:  map[string]model.Participant{},
		registrations: map[string]model.Registration{},
	}
}

// ExecuteTransaction runs fn while holding the store's transaction lock.
// Nested calls join the outer transaction.
func (s *Store) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) clone() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New()
	for k, v := range s.rooms {
		c.rooms[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = v
	}
	for k, v := range s.registrations {
		c.registrations[k] = v
	}
	return c
}

func (s *Store) restore(snapshot *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms = snapshot.rooms
	s.events = snapshot.events
	s.participants = snapshot.participants
	s.registrations = snapshot.registrations
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func stamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// ────────────────────────────────────────────────
// Rooms
// ────────────────────────────────────────────────

type Rooms struct{ *Store }

func (s *Store) Rooms() Rooms { return Rooms{s} }

func (r Rooms) Create(ctx context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := stamp()
	room.ID = newID()
	room.CreatedAt, room.UpdatedAt = now, now
	room.Deleted = false
	room.BookingVersion = 0
	r.rooms[room.ID] = *room
	return nil
}

func (r Rooms) FindByID(ctx context.Context, id string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r Rooms) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.Room{}
	for _, room := range r.rooms {
		if !room.Deleted {
			room := room
			out = append(out, &room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func (r Rooms) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, room := range r.rooms {
		if !room.Deleted {
			n++
		}
	}
	return n, nil
}

func (r Rooms) Update(ctx context.Context, id string, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.live(id)
	if err != nil {
		return err
	}
	stored.Name = room.Name
	stored.Capacity = room.Capacity
	stored.UpdatedAt = stamp()
	r.rooms[id] = stored
	return nil
}

func (r Rooms) Reserve(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.live(id)
	if err != nil {
		return err
	}
	stored.BookingVersion++
	r.rooms[id] = stored
	return nil
}

func (r Rooms) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.live(id)
	if err != nil {
		return err
	}
	stored.Deleted = true
	stored.UpdatedAt = stamp()
	r.rooms[id] = stored
	return nil
}

func (r Rooms) live(id string) (model.Room, error) {
	if !validID(id) {
		return model.Room{}, roomserrors.ErrInvalidID
	}
	room, ok := r.rooms[id]
	if !ok || room.Deleted {
		return model.Room{}, roomserrors.ErrNotFound
	}
	return room, nil
}

// ────────────────────────────────────────────────
// Events
// ────────────────────────────────────────────────

type Events struct{ *Store }

func (s *Store) Events() Events { return Events{s} }

func (e Events) Create(ctx context.Context, event *model.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := stamp()
	event.ID = newID()
	event.CreatedAt, event.UpdatedAt = now, now
	event.Deleted = false
	e.events[event.ID] = *event
	return nil
}

func (e Events) FindByID(ctx context.Context, id string) (*model.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, err := e.live(id)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (e Events) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Event, error) {
	out := e.filter(func(ev model.Event) bool { return true })
	return page(out, limit, offset), nil
}

func (e Events) Count(ctx context.Context) (int64, error) {
	return int64(len(e.filter(func(ev model.Event) bool { return true }))), nil
}

func (e Events) Update(ctx context.Context, id string, event *model.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored, err := e.live(id)
	if err != nil {
		return err
	}
	stored.Name = event.Name
	stored.StartTime = event.StartTime
	stored.EndTime = event.EndTime
	stored.RoomID = event.RoomID
	stored.UpdatedAt = stamp()
	e.events[id] = stored
	return nil
}

func (e Events) SoftDelete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored, err := e.live(id)
	if err != nil {
		return err
	}
	stored.Deleted = true
	stored.UpdatedAt = stamp()
	e.events[id] = stored
	return nil
}

func (e Events) FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Event, error) {
	return e.filter(func(ev model.Event) bool { return ev.RoomID == roomID }), nil
}

func (e Events) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	return e.filter(func(ev model.Event) bool {
		return !ev.StartTime.After(to) && !ev.EndTime.Before(from)
	}), nil
}

func (e Events) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	return e.filter(func(ev model.Event) bool {
		return !ev.StartTime.Before(from) && !ev.StartTime.After(to)
	}), nil
}

func (e Events) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !validID(id) {
			return nil, eventserrors.ErrInvalidID
		}
		want[id] = true
	}
	return e.filter(func(ev model.Event) bool { return want[ev.ID] }), nil
}

// filter returns live events matching keep, ordered by start time.
func (e Events) filter(keep func(model.Event) bool) []*model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := []*model.Event{}
	for _, ev := range e.events {
		if !ev.Deleted && keep(ev) {
			ev := ev
			out = append(out, &ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e Events) live(id string) (model.Event, error) {
	if !validID(id) {
		return model.Event{}, eventserrors.ErrInvalidID
	}
	event, ok := e.events[id]
	if !ok || event.Deleted {
		return model.Event{}, eventserrors.ErrNotFound
	}
	return event, nil
}

// ────────────────────────────────────────────────
// Registrations
// ────────────────────────────────────────────────

type Registrations struct{ *Store }

func (s *Store) Registrations() Registrations { return Registrations{s} }

func registrationKey(eventID, participantID string) string {
	return eventID + "/" + participantID
}

func (r Registrations) Create(ctx context.Context, registration *model.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registrationKey(registration.EventID, registration.ParticipantID)
	if _, ok := r.registrations[key]; ok {
		return eventserrors.ErrAlreadyRegistered
	}
	registration.ID = newID()
	registration.CreatedAt = stamp()
	r.registrations[key] = *registration
	return nil
}

func (r Registrations) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.registrations[registrationKey(eventID, participantID)]
	return ok, nil
}

func (r Registrations) FindParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []string{}
	for _, reg := range r.registrations {
		if reg.EventID == eventID {
			ids = append(ids, reg.ParticipantID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r Registrations) FindEventIDs(ctx context.Context, participantID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []string{}
	for _, reg := range r.registrations {
		if reg.ParticipantID == participantID {
			ids = append(ids, reg.EventID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Len reports the number of stored registrations, including those of
// deleted events.
func (r Registrations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registrations)
}

// ────────────────────────────────────────────────
// Participants
// ────────────────────────────────────────────────

type Participants struct{ *Store }

func (s *Store) Participants() Participants { return Participants{s} }

func (p Participants) Create(ctx context.Context, participant *model.Participant) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.emailTaken(participant.Email, "") {
		return participantserrors.ErrDuplicateEmail
	}
	now := stamp()
	participant.ID = newID()
	participant.CreatedAt, participant.UpdatedAt = now, now
	participant.Deleted = false
	participant.RegistrationVersion = 0
	p.participants[participant.ID] = *participant
	return nil
}

func (p Participants) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	participant, err := p.live(id)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (p Participants) FindByEmail(ctx context.Context, email string) (*model.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, participant := range p.participants {
		if !participant.Deleted && participant.Email == email {
			return &participant, nil
		}
	}
	return nil, participantserrors.ErrNotFound
}

func (p Participants) FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := []*model.Participant{}
	for _, id := range ids {
		if !validID(id) {
			return nil, participantserrors.ErrInvalidID
		}
		if participant, ok := p.participants[id]; ok && !participant.Deleted {
			out = append(out, &participant)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (p Participants) Update(ctx context.Context, id string, participant *model.Participant) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.live(id)
	if err != nil {
		return err
	}
	if p.emailTaken(participant.Email, id) {
		return participantserrors.ErrDuplicateEmail
	}
	stored.FirstName = participant.FirstName
	stored.LastName = participant.LastName
	stored.Email = participant.Email
	stored.Phone = participant.Phone
	stored.UpdatedAt = stamp()
	p.participants[id] = stored
	return nil
}

func (p Participants) Reserve(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.live(id)
	if err != nil {
		return err
	}
	stored.RegistrationVersion++
	p.participants[id] = stored
	return nil
}

func (p Participants) SoftDelete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.live(id)
	if err != nil {
		return err
	}
	stored.Deleted = true
	stored.UpdatedAt = stamp()
	p.participants[id] = stored
	return nil
}

func (p Participants) emailTaken(email, exceptID string) bool {
	for id, participant := range p.participants {
		if id != exceptID && !participant.Deleted && participant.Email == email {
			return true
		}
	}
	return false
}

func (p Participants) live(id string) (model.Participant, error) {
	if !validID(id) {
		return model.Participant{}, participantserrors.ErrInvalidID
	}
	participant, ok := p.participants[id]
	if !ok || participant.Deleted {
		return model.Participant{}, participantserrors.ErrNotFound
	}
	return participant, nil
}

func page[T any](items []*T, limit int, offset int64) []*T {
	if offset >= int64(len(items)) {
		return []*T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
