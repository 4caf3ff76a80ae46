package submit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"backend-practicelog/internal/session"
	"backend-practicelog/internal/timer"
)

// API is the backend surface the submitter drives. internal/client provides
// the HTTP implementation; tests provide fakes.
type API interface {
	CreateSession(ctx context.Context, in session.CreateSessionInput) (session.Session, error)
	CreateItem(ctx context.Context, sessionID string, in session.ItemInput) (session.Item, error)
}

var ErrNotCompleted = errors.New("timer has not reached its goal")

// PartialError reports a save that created the session but failed before all
// laps were submitted. Retrying Submit resumes from FirstUnsent against the
// same session, so nothing is duplicated.
type PartialError struct {
	SessionID   string
	FirstUnsent int
	Err         error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("saved session %s but %d lap(s) remain unsent: %v", e.SessionID, e.FirstUnsent, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

type Submitter struct {
	api API
}

func NewSubmitter(api API) *Submitter {
	return &Submitter{api: api}
}

// Submit finalizes a completed timer: one session create, then one item
// create per lap in lap order. Local state clears only on full success;
// any earlier failure leaves the snapshot in place for a retry.
func (s *Submitter) Submit(ctx context.Context, t *timer.Timer) (session.Session, error) {
	snap := t.Snapshot()
	if snap.State != timer.Completed {
		return session.Session{}, ErrNotCompleted
	}

	created := session.Session{ID: snap.SessionID}
	if created.ID == "" {
		actual := int(math.Round(float64(snap.ElapsedSeconds) / 60))
		if actual < 1 {
			actual = 1
		}
		completedAt := time.Now()

		in := session.CreateSessionInput{
			PracticeDate:   snap.StartedAt.Format("2006-01-02"),
			TotalDuration:  snap.GoalSeconds / 60,
			ActualDuration: &actual,
			SessionNotes:   snap.Notes,
			Status:         "completed",
			StartedAt:      &snap.StartedAt,
			CompletedAt:    &completedAt,
		}
		if snap.Instrument != "" {
			instrument := snap.Instrument
			in.Instrument = &instrument
		}

		var err error
		created, err = s.api.CreateSession(ctx, in)
		if err != nil {
			return session.Session{}, err
		}
		if err := t.MarkSubmitted(created.ID, 0); err != nil {
			return session.Session{}, err
		}
		snap.ItemsSent = 0
	}

	for i := snap.ItemsSent; i < len(snap.Laps); i++ {
		lap := snap.Laps[i]
		lapNumber := lap.LapNumber
		started, ended := lap.StartedAt, lap.EndedAt

		_, err := s.api.CreateItem(ctx, created.ID, session.ItemInput{
			ItemType:         lap.ItemType,
			ItemName:         lap.ItemName,
			TempoBPM:         lap.TempoBPM,
			TimeSpentMinutes: lap.TimeSpentMinutes,
			DifficultyLevel:  lap.DifficultyLevel,
			Notes:            lap.Notes,
			LapNumber:        &lapNumber,
			StartedAt:        &started,
			EndedAt:          &ended,
		})
		if err != nil {
			return session.Session{}, &PartialError{SessionID: created.ID, FirstUnsent: i, Err: err}
		}
		if err := t.MarkSubmitted(created.ID, i+1); err != nil {
			return session.Session{}, err
		}
	}

	if err := t.Stop(); err != nil {
		return session.Session{}, err
	}
	return created, nil
}
