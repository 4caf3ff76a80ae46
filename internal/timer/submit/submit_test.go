package submit

import (
	"context"
	"errors"
	"testing"

	"backend-practicelog/internal/session"
	"backend-practicelog/internal/timer"
)

type fakeAPI struct {
	sessions     []session.CreateSessionInput
	items        []session.ItemInput
	itemSessions []string
	failItemAt   int // 1-based index of the item call that fails; 0 = never
	itemCalls    int
	failSession  bool
}

func (f *fakeAPI) CreateSession(_ context.Context, in session.CreateSessionInput) (session.Session, error) {
	if f.failSession {
		return session.Session{}, errors.New("session create failed")
	}
	f.sessions = append(f.sessions, in)
	return session.Session{ID: "sess-1", Status: in.Status}, nil
}

func (f *fakeAPI) CreateItem(_ context.Context, sessionID string, in session.ItemInput) (session.Item, error) {
	f.itemCalls++
	if f.failItemAt != 0 && f.itemCalls == f.failItemAt {
		return session.Item{}, errors.New("item create failed")
	}
	f.items = append(f.items, in)
	f.itemSessions = append(f.itemSessions, sessionID)
	return session.Item{ID: "item", SessionID: sessionID}, nil
}

func completedTimer(t *testing.T, store timer.SnapshotStore, laps int) *timer.Timer {
	t.Helper()
	tm := timer.New(store)
	if err := tm.Start(2, "piano", "notes"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for lap := 0; lap < laps; lap++ {
		for i := 0; i < 120/laps; i++ {
			_ = tm.Tick()
		}
		if tm.State() == timer.Running {
			_ = tm.Pause()
		}
		if _, err := tm.AddLap(timer.LapInput{ItemType: "scale", ItemName: "Lap"}); err != nil {
			t.Fatalf("lap: %v", err)
		}
		if tm.State() == timer.Paused {
			_ = tm.Resume()
		}
	}
	for tm.State() != timer.Completed {
		if err := tm.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	return tm
}

func TestSubmitHappyPath(t *testing.T) {
	store := timer.NewMemStore()
	tm := completedTimer(t, store, 3)
	api := &fakeAPI{}

	created, err := NewSubmitter(api).Submit(context.Background(), tm)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID != "sess-1" {
		t.Fatalf("expected created session id")
	}
	if len(api.sessions) != 1 {
		t.Fatalf("expected exactly one session create")
	}
	if api.sessions[0].Status != "completed" || api.sessions[0].ActualDuration == nil {
		t.Fatalf("expected completed session with actual duration")
	}
	if len(api.items) != 3 {
		t.Fatalf("expected 3 item creates, got %d", len(api.items))
	}
	for i, item := range api.items {
		if item.LapNumber == nil || *item.LapNumber != i+1 {
			t.Fatalf("items out of lap order at %d", i)
		}
		if api.itemSessions[i] != "sess-1" {
			t.Fatalf("item sent to wrong session")
		}
	}

	// full success clears local state
	if tm.State() != timer.Idle {
		t.Fatalf("expected timer reset after save")
	}
	if snap, _ := store.Load(); snap != nil {
		t.Fatalf("expected snapshot cleared")
	}
}

func TestSubmitRequiresCompleted(t *testing.T) {
	tm := timer.New(timer.NewMemStore())
	_ = tm.Start(5, "", "")

	_, err := NewSubmitter(&fakeAPI{}).Submit(context.Background(), tm)
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestSubmitSessionCreateFailureKeepsSnapshot(t *testing.T) {
	store := timer.NewMemStore()
	tm := completedTimer(t, store, 2)
	api := &fakeAPI{failSession: true}

	if _, err := NewSubmitter(api).Submit(context.Background(), tm); err == nil {
		t.Fatalf("expected failure")
	}
	snap, _ := store.Load()
	if snap == nil || snap.SessionID != "" {
		t.Fatalf("snapshot must survive untouched, got %+v", snap)
	}
}

func TestSubmitPartialFailureThenRetry(t *testing.T) {
	store := timer.NewMemStore()
	tm := completedTimer(t, store, 3)
	api := &fakeAPI{failItemAt: 2}

	_, err := NewSubmitter(api).Submit(context.Background(), tm)
	var partial *PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialError, got %v", err)
	}
	if partial.SessionID != "sess-1" || partial.FirstUnsent != 1 {
		t.Fatalf("unexpected partial state: %+v", partial)
	}

	// local state must survive for the retry
	snap, _ := store.Load()
	if snap == nil || snap.SessionID != "sess-1" || snap.ItemsSent != 1 {
		t.Fatalf("expected persisted progress, got %+v", snap)
	}

	// retry resumes item creation without a second session create
	api.failItemAt = 0
	restored, had, err := timer.Restore(store)
	if err != nil || !had {
		t.Fatalf("restore: %v", err)
	}
	if _, err := NewSubmitter(api).Submit(context.Background(), restored); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(api.sessions) != 1 {
		t.Fatalf("session duplicated on retry")
	}
	if len(api.items) != 3 {
		t.Fatalf("expected all items sent after retry, got %d", len(api.items))
	}
	if snap, _ := store.Load(); snap != nil {
		t.Fatalf("expected snapshot cleared after successful retry")
	}
}
