package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

var ErrInvalidTransition = errors.New("invalid timer transition")

// Lap is a finished sub-item of the running session. StartedAt/EndedAt are
// HH:MM:SS offsets into session elapsed time.
type Lap struct {
	LapNumber        int     `json:"lap_number"`
	ItemType         string  `json:"item_type"`
	ItemName         string  `json:"item_name"`
	TempoBPM         *int    `json:"tempo_bpm,omitempty"`
	TimeSpentMinutes int     `json:"time_spent_minutes"`
	DifficultyLevel  *string `json:"difficulty_level,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	StartedAt        string  `json:"started_at"`
	EndedAt          string  `json:"ended_at"`
}

type LapInput struct {
	ItemType        string
	ItemName        string
	TempoBPM        *int
	DifficultyLevel *string
	Notes           string
}

// Timer is the single local practice clock. Every state-affecting mutation
// is snapshotted through the store so a crash can be recovered from.
type Timer struct {
	mu    sync.Mutex
	snap  Snapshot
	store SnapshotStore
	now   func() time.Time
}

func New(store SnapshotStore) *Timer {
	return &Timer{store: store, now: time.Now}
}

// Restore loads a previously snapshotted timer. The second return reports
// whether a snapshot existed. Elapsed time is restored verbatim; no attempt
// is made to account for wall-clock time passed while the process was down.
func Restore(store SnapshotStore) (*Timer, bool, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, false, err
	}
	t := New(store)
	if snap == nil {
		return t, false, nil
	}
	t.snap = *snap
	return t, true, nil
}

func (t *Timer) Start(goalMinutes int, instrument, notes string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State != Idle {
		return fmt.Errorf("%w: start requires an idle timer", ErrInvalidTransition)
	}
	if goalMinutes < 1 {
		return errors.New("goal must be at least 1 minute")
	}

	t.snap = Snapshot{
		State:       Running,
		GoalSeconds: goalMinutes * 60,
		Instrument:  instrument,
		Notes:       notes,
		StartedAt:   t.now(),
	}
	return t.persist()
}

// Tick advances elapsed time by one second. When the goal is reached the
// clock clamps and moves to Completed; further ticks are ignored.
func (t *Timer) Tick() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State != Running {
		return nil
	}
	t.snap.ElapsedSeconds++
	if t.snap.ElapsedSeconds >= t.snap.GoalSeconds {
		t.snap.ElapsedSeconds = t.snap.GoalSeconds
		t.snap.State = Completed
	}
	return t.persist()
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State != Running {
		return fmt.Errorf("%w: pause requires a running timer", ErrInvalidTransition)
	}
	t.snap.State = Paused
	return t.persist()
}

// Resume is a no-op on a completed timer; completion holds until the user
// saves or discards.
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.snap.State {
	case Completed:
		return nil
	case Paused:
		t.snap.State = Running
		return t.persist()
	default:
		return fmt.Errorf("%w: resume requires a paused timer", ErrInvalidTransition)
	}
}

// AddLap closes the current lap at the present elapsed offset. Lap duration
// is the whole-minute floor of the gap since the previous boundary, never
// below one minute so no zero-duration items reach the backend.
func (t *Timer) AddLap(in LapInput) (Lap, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State != Paused && t.snap.State != Completed {
		return Lap{}, fmt.Errorf("%w: laps are recorded while paused", ErrInvalidTransition)
	}
	if in.ItemName == "" {
		return Lap{}, errors.New("item name required")
	}

	minutes := (t.snap.ElapsedSeconds - t.snap.LapBoundarySeconds) / 60
	if minutes < 1 {
		minutes = 1
	}

	lap := Lap{
		LapNumber:        len(t.snap.Laps) + 1,
		ItemType:         in.ItemType,
		ItemName:         in.ItemName,
		TempoBPM:         in.TempoBPM,
		TimeSpentMinutes: minutes,
		DifficultyLevel:  in.DifficultyLevel,
		Notes:            in.Notes,
		StartedAt:        clockOffset(t.snap.LapBoundarySeconds),
		EndedAt:          clockOffset(t.snap.ElapsedSeconds),
	}
	t.snap.Laps = append(t.snap.Laps, lap)
	t.snap.LapBoundarySeconds = t.snap.ElapsedSeconds

	if err := t.persist(); err != nil {
		return Lap{}, err
	}
	return lap, nil
}

// Stop abandons the session from any state and clears local persistence.
func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{}
	return t.store.Clear()
}

// MarkSubmitted records submission progress so a partially failed save can
// resume against the already-created session without duplicating it.
func (t *Timer) MarkSubmitted(sessionID string, itemsSent int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.SessionID = sessionID
	t.snap.ItemsSent = itemsSent
	return t.persist()
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.State
}

func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.ElapsedSeconds
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.GoalSeconds - t.snap.ElapsedSeconds
}

// Snapshot returns a copy of the current state.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.snap
	snap.Laps = append([]Lap(nil), t.snap.Laps...)
	return snap
}

func (t *Timer) persist() error {
	snap := t.snap
	snap.Laps = append([]Lap(nil), t.snap.Laps...)
	return t.store.Save(&snap)
}

func clockOffset(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
