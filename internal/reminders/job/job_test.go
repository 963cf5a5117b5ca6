package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventrooms/pkg/config"
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"
)

type mockUpcoming struct {
	events []*model.Event
	err    error
	from   time.Time
	to     time.Time
}

func (m *mockUpcoming) GetUpcoming(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	m.from, m.to = from, to
	return m.events, m.err
}

type mockRegistrations struct {
	byEvent map[string][]string
	errFor  string
}

func (m *mockRegistrations) FindParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	if eventID == m.errFor {
		return nil, errors.New("network")
	}
	return m.byEvent[eventID], nil
}

type mockParticipants struct {
	byID map[string]*model.Participant
}

func (m *mockParticipants) FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error) {
	out := []*model.Participant{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockLeases struct {
	held     map[string]string
	err      error
	released []string
}

func (m *mockLeases) Acquire(ctx context.Context, lease *model.ReminderLease) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.held == nil {
		m.held = map[string]string{}
	}
	if _, ok := m.held[lease.ID]; ok {
		return false, nil
	}
	m.held[lease.ID] = lease.Owner
	return true, nil
}

func (m *mockLeases) Release(ctx context.Context, id, owner string) error {
	if m.held[id] == owner {
		delete(m.held, id)
		m.released = append(m.released, id)
	}
	return nil
}

type mockDispatcher struct {
	failFor map[string]bool
	sent    []*model.Reminder
}

func (m *mockDispatcher) Dispatch(ctx context.Context, reminder *model.Reminder) error {
	if m.failFor[reminder.Email] {
		return errors.New("broker down")
	}
	m.sent = append(m.sent, reminder)
	return nil
}

var fixedNow = time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Log:              logger.Nop(),
		ReminderInterval: 24 * time.Hour,
		ReminderWindow:   24 * time.Hour,
		ReminderLeaseTTL: time.Hour,
	}
}

func newTestJob(up *mockUpcoming, regs *mockRegistrations, leases *mockLeases, d *mockDispatcher) *Job {
	participants := &mockParticipants{byID: map[string]*model.Participant{
		"p1": {ID: "p1", FirstName: "Ann", Email: "ann@example.com"},
		"p2": {ID: "p2", FirstName: "Bob", Email: "bob@example.com"},
		"p3": {ID: "p3", FirstName: "Cid", Email: "cid@example.com"},
	}}
	j := New(up, regs, participants, leases, d, testConfig())
	j.now = func() time.Time { return fixedNow }
	return j
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	up := &mockUpcoming{events: []*model.Event{
		{ID: "e1", Name: "Conf"},
		{ID: "e2", Name: "Broken"},
		{ID: "e3", Name: "Workshop"},
	}}
	regs := &mockRegistrations{
		byEvent: map[string][]string{"e1": {"p1", "p2"}, "e3": {"p2", "p3"}},
		errFor:  "e2",
	}
	d := &mockDispatcher{failFor: map[string]bool{"bob@example.com": true}}
	j := newTestJob(up, regs, &mockLeases{}, d)

	result, err := j.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Events != 3 || result.Dispatched != 2 || result.Failed != 3 {
		t.Errorf("expected 3 events, 2 dispatched, 3 failed; got %+v", result)
	}
	if len(d.sent) != 2 || d.sent[0].Email != "ann@example.com" || d.sent[1].Email != "cid@example.com" {
		t.Errorf("unexpected reminders %v", d.sent)
	}
	if !up.from.Equal(fixedNow) || !up.to.Equal(fixedNow.Add(24*time.Hour)) {
		t.Errorf("unexpected window %s..%s", up.from, up.to)
	}
}

func TestRun_SkipsClaimedWindow(t *testing.T) {
	leases := &mockLeases{}
	up := &mockUpcoming{}

	first := newTestJob(up, &mockRegistrations{}, leases, &mockDispatcher{})
	second := newTestJob(up, &mockRegistrations{}, leases, &mockDispatcher{})
	second.now = func() time.Time { return fixedNow.Add(3 * time.Hour) }

	if r, err := first.Run(context.Background()); err != nil || r.Skipped {
		t.Fatalf("first run should claim the window, got %+v %v", r, err)
	}
	r, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Skipped {
		t.Error("second runner in the same window should skip")
	}
}

func TestRun_ReleasesLeaseOnLoadFailure(t *testing.T) {
	leases := &mockLeases{}
	j := newTestJob(&mockUpcoming{err: errors.New("network")}, &mockRegistrations{}, leases, &mockDispatcher{})

	if _, err := j.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(leases.released) != 1 {
		t.Errorf("expected lease to be released, got %v", leases.released)
	}
}

func TestRun_LeaseError(t *testing.T) {
	j := newTestJob(&mockUpcoming{}, &mockRegistrations{}, &mockLeases{err: errors.New("network")}, &mockDispatcher{})

	if _, err := j.Run(context.Background()); err == nil {
		t.Error("expected lease error to be returned")
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	up := &mockUpcoming{}
	j := newTestJob(up, &mockRegistrations{}, &mockLeases{}, &mockDispatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestRun_WindowEndBelongsToNextRun(t *testing.T) {
	window := testConfig().ReminderWindow
	atEdge := &model.Event{ID: "edge", Name: "Edge", StartTime: fixedNow.Add(window)}
	inside := &model.Event{ID: "inside", Name: "Inside", StartTime: fixedNow.Add(window - time.Millisecond)}
	regs := &mockRegistrations{byEvent: map[string][]string{"edge": {"p1"}, "inside": {"p2"}}}

	first := &mockDispatcher{}
	j := newTestJob(&mockUpcoming{events: []*model.Event{inside, atEdge}}, regs, &mockLeases{}, first)
	result, err := j.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Events != 1 || len(first.sent) != 1 || first.sent[0].EventID != "inside" {
		t.Fatalf("expected only the inside event in the first window, got %+v", first.sent)
	}

	next := &mockDispatcher{}
	j = newTestJob(&mockUpcoming{events: []*model.Event{atEdge}}, regs, &mockLeases{}, next)
	j.now = func() time.Time { return fixedNow.Add(window) }
	if _, err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(next.sent) != 1 || next.sent[0].EventID != "edge" {
		t.Errorf("expected the next window to send the edge event, got %+v", next.sent)
	}
}
