package availability

import (
	"context"
	"fmt"
	"time"

	"eventrooms/pkg/model"
)

// EventSource is the read side of the event repository the checker needs.
type EventSource interface {
	// FindActiveByRoom returns every non-deleted event bound to roomID.
	FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Event, error)
	// FindActiveInRange returns non-deleted events with start <= to and end >= from.
	FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Event, error)
}

// Checker answers whether a room is free for an interval. It never writes.
type Checker struct {
	events EventSource
	policy Policy
}

func NewChecker(events EventSource, policy Policy) *Checker {
	if policy == "" {
		policy = PolicyStrict
	}
	return &Checker{
		events: events,
		policy: policy,
	}
}

func (c *Checker) Policy() Policy {
	return c.policy
}

// IsAvailable reports whether no live event in roomID, other than
// excludeEventID, overlaps [start, end). A room with no events, including an
// unknown room, is available.
func (c *Checker) IsAvailable(ctx context.Context, roomID string, start, end time.Time, excludeEventID string) (bool, error) {
	conflicts, err := c.Conflicts(ctx, roomID, start, end, excludeEventID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns the events that block [start, end) in roomID.
func (c *Checker) Conflicts(ctx context.Context, roomID string, start, end time.Time, excludeEventID string) ([]*model.Event, error) {
	events, err := c.events.FindActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for room %s: %w", roomID, err)
	}

	var conflicts []*model.Event
	for _, e := range events {
		if e.Deleted || (excludeEventID != "" && e.ID == excludeEventID) {
			continue
		}
		if c.policy.Overlaps(e.StartTime, e.EndTime, start, end) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts, nil
}

// FilterAvailable keeps the rooms free for [start, end), preserving order.
// It issues a single range query instead of one per room.
func (c *Checker) FilterAvailable(ctx context.Context, rooms []*model.Room, start, end time.Time) ([]*model.Room, error) {
	events, err := c.events.FindActiveInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load events in range: %w", err)
	}

	busy := make(map[string]struct{})
	for _, e := range events {
		if e.Deleted {
			continue
		}
		if c.policy.Overlaps(e.StartTime, e.EndTime, start, end) {
			busy[e.RoomID] = struct{}{}
		}
	}

	available := make([]*model.Room, 0, len(rooms))
	for _, r := range rooms {
		if _, ok := busy[r.ID]; ok {
			continue
		}
		available = append(available, r)
	}
	return available, nil
}
