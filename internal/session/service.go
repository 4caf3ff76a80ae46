package session

import (
	"context"
	"errors"
	"time"

	"backend-practicelog/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EventPublisher receives session lifecycle events for live fan-out.
// A nil publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, userID, event string, payload any)
}

type Service struct {
	db     db.Querier
	events EventPublisher
}

func NewService(db db.Querier, events EventPublisher) *Service {
	return &Service{db: db, events: events}
}

const sessionColumns = `id, user_id, to_char(practice_date, 'YYYY-MM-DD'), total_duration,
	       actual_duration, instrument, COALESCE(session_notes, ''), status,
	       started_at, completed_at, created_at, updated_at`

func (s *Service) CreateSession(ctx context.Context, userID string, in CreateSessionInput) (Session, error) {
	if err := validateSession(&in); err != nil {
		return Session{}, err
	}

	// Only one active or paused session per user. The partial unique index
	// in the schema closes the race; this check yields the clean conflict.
	if in.Status == "active" || in.Status == "paused" {
		var exists bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM practice_sessions
				WHERE user_id=$1 AND status IN ('active','paused')
			)
		`, userID).Scan(&exists)
		if err != nil {
			return Session{}, err
		}
		if exists {
			return Session{}, ErrActiveExists
		}
	}

	sess := Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		PracticeDate:   in.PracticeDate,
		TotalDuration:  in.TotalDuration,
		ActualDuration: in.ActualDuration,
		Instrument:     in.Instrument,
		SessionNotes:   in.SessionNotes,
		Status:         in.Status,
		StartedAt:      in.StartedAt,
		CompletedAt:    in.CompletedAt,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO practice_sessions
			(id, user_id, practice_date, total_duration, actual_duration,
			 instrument, session_notes, status, started_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`, sess.ID, sess.UserID, sess.PracticeDate, sess.TotalDuration, sess.ActualDuration,
		sess.Instrument, sess.SessionNotes, sess.Status, sess.StartedAt, sess.CompletedAt)
	if err := row.Scan(&sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return Session{}, err
	}

	s.publish(ctx, userID, "session_created", sess)
	return sess, nil
}

func (s *Service) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM practice_sessions
		WHERE user_id=$1
		ORDER BY practice_date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession returns the session with its items. Ownership is checked after
// the row loads so a missing row and a foreign row surface differently.
func (s *Service) GetSession(ctx context.Context, userID, id string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM practice_sessions WHERE id=$1
	`, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != userID {
		return Session{}, ErrForbidden
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Items = items
	return sess, nil
}

func (s *Service) UpdateSession(ctx context.Context, userID, id string, patch UpdateSessionInput) (Session, error) {
	sess, err := s.GetSession(ctx, userID, id)
	if err != nil {
		return Session{}, err
	}

	completing := false
	if patch.PracticeDate != nil {
		if err := validateDate(*patch.PracticeDate); err != nil {
			return Session{}, err
		}
		sess.PracticeDate = *patch.PracticeDate
	}
	if patch.TotalDuration != nil {
		sess.TotalDuration = *patch.TotalDuration
	}
	if patch.ActualDuration != nil {
		sess.ActualDuration = patch.ActualDuration
	}
	if patch.Instrument != nil {
		instrument, err := normalizeInstrument(patch.Instrument)
		if err != nil {
			return Session{}, err
		}
		sess.Instrument = instrument
	}
	if patch.SessionNotes != nil {
		sess.SessionNotes = *patch.SessionNotes
	}
	if patch.Status != nil {
		status, err := normalizeStatus(*patch.Status)
		if err != nil {
			return Session{}, err
		}
		completing = status == "completed" && sess.Status != "completed"
		sess.Status = status
	}
	if patch.StartedAt != nil {
		sess.StartedAt = patch.StartedAt
	}
	if patch.CompletedAt != nil {
		sess.CompletedAt = patch.CompletedAt
	}
	if completing && sess.CompletedAt == nil {
		now := time.Now()
		sess.CompletedAt = &now
	}
	if sess.TotalDuration < 1 {
		return Session{}, errValidationf("total_duration must be at least 1 minute")
	}
	if sess.ActualDuration != nil && *sess.ActualDuration < 1 {
		return Session{}, errValidationf("actual_duration must be at least 1 minute")
	}

	// Reopening a session hits the same one-open-session rule as create;
	// without this check the partial unique index would surface as a 500.
	if sess.Status == "active" || sess.Status == "paused" {
		var exists bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM practice_sessions
				WHERE user_id=$1 AND id <> $2 AND status IN ('active','paused')
			)
		`, userID, sess.ID).Scan(&exists)
		if err != nil {
			return Session{}, err
		}
		if exists {
			return Session{}, ErrActiveExists
		}
	}

	row := s.db.QueryRow(ctx, `
		UPDATE practice_sessions
		SET practice_date=$2, total_duration=$3, actual_duration=$4, instrument=$5,
		    session_notes=$6, status=$7, started_at=$8, completed_at=$9, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, sess.ID, sess.PracticeDate, sess.TotalDuration, sess.ActualDuration, sess.Instrument,
		sess.SessionNotes, sess.Status, sess.StartedAt, sess.CompletedAt)
	if err := row.Scan(&sess.UpdatedAt); err != nil {
		return Session{}, err
	}

	if completing {
		s.publish(ctx, userID, "session_completed", sess)
	}
	return sess, nil
}

func (s *Service) DeleteSession(ctx context.Context, userID, id string) error {
	if _, err := s.GetSession(ctx, userID, id); err != nil {
		return err
	}
	// session_items rows go with the session via ON DELETE CASCADE
	_, err := s.db.Exec(ctx, `DELETE FROM practice_sessions WHERE id=$1`, id)
	return err
}

func (s *Service) AddItem(ctx context.Context, userID, sessionID string, in ItemInput) (Item, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return Item{}, err
	}
	if err := validateItem(&in); err != nil {
		return Item{}, err
	}

	item := Item{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		ItemType:         in.ItemType,
		ItemName:         in.ItemName,
		TempoBPM:         in.TempoBPM,
		TimeSpentMinutes: in.TimeSpentMinutes,
		DifficultyLevel:  in.DifficultyLevel,
		Notes:            in.Notes,
		LapNumber:        in.LapNumber,
		StartedAt:        in.StartedAt,
		EndedAt:          in.EndedAt,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO session_items
			(id, session_id, item_type, item_name, tempo_bpm, time_spent_minutes,
			 difficulty_level, notes, lap_number, started_at, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, item.ID, item.SessionID, item.ItemType, item.ItemName, item.TempoBPM,
		item.TimeSpentMinutes, item.DifficultyLevel, item.Notes, item.LapNumber,
		item.StartedAt, item.EndedAt)
	if err := row.Scan(&item.CreatedAt); err != nil {
		return Item{}, err
	}

	s.publish(ctx, userID, "item_added", item)
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, userID, sessionID string) ([]Item, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.loadItems(ctx, sessionID)
}

func (s *Service) loadItems(ctx context.Context, sessionID string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, item_type, item_name, tempo_bpm, time_spent_minutes,
		       difficulty_level, COALESCE(notes, ''), lap_number, started_at, ended_at, created_at
		FROM session_items
		WHERE session_id=$1
		ORDER BY lap_number NULLS LAST, created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.SessionID, &it.ItemType, &it.ItemName, &it.TempoBPM,
			&it.TimeSpentMinutes, &it.DifficultyLevel, &it.Notes, &it.LapNumber,
			&it.StartedAt, &it.EndedAt, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Service) publish(ctx context.Context, userID, event string, payload any) {
	if s.events != nil {
		s.events.Publish(ctx, userID, event, payload)
	}
}

func scanSession(row pgx.Row) (Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.PracticeDate, &sess.TotalDuration,
		&sess.ActualDuration, &sess.Instrument, &sess.SessionNotes, &sess.Status,
		&sess.StartedAt, &sess.CompletedAt, &sess.CreatedAt, &sess.UpdatedAt)
	return sess, err
}
