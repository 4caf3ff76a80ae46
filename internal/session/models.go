package session

import "time"

type Session struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	PracticeDate   string     `json:"practice_date"`
	TotalDuration  int        `json:"total_duration"`
	ActualDuration *int       `json:"actual_duration,omitempty"`
	Instrument     *string    `json:"instrument,omitempty"`
	SessionNotes   string     `json:"session_notes,omitempty"`
	Status         string     `json:"status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Items          []Item     `json:"items,omitempty"`
}

// Item is a lap recorded inside a session. StartedAt/EndedAt are HH:MM:SS
// offsets relative to session elapsed time, not wall-clock timestamps.
type Item struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	ItemType         string    `json:"item_type"`
	ItemName         string    `json:"item_name"`
	TempoBPM         *int      `json:"tempo_bpm,omitempty"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	DifficultyLevel  *string   `json:"difficulty_level,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	LapNumber        *int      `json:"lap_number,omitempty"`
	StartedAt        *string   `json:"started_at,omitempty"`
	EndedAt          *string   `json:"ended_at,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateSessionInput struct {
	PracticeDate   string     `json:"practice_date"`
	TotalDuration  int        `json:"total_duration"`
	ActualDuration *int       `json:"actual_duration"`
	Instrument     *string    `json:"instrument"`
	SessionNotes   string     `json:"session_notes"`
	Status         string     `json:"status"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

type UpdateSessionInput struct {
	PracticeDate   *string    `json:"practice_date"`
	TotalDuration  *int       `json:"total_duration"`
	ActualDuration *int       `json:"actual_duration"`
	Instrument     *string    `json:"instrument"`
	SessionNotes   *string    `json:"session_notes"`
	Status         *string    `json:"status"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

type ItemInput struct {
	ItemType         string  `json:"item_type"`
	ItemName         string  `json:"item_name"`
	TempoBPM         *int    `json:"tempo_bpm"`
	TimeSpentMinutes int     `json:"time_spent_minutes"`
	DifficultyLevel  *string `json:"difficulty_level"`
	Notes            string  `json:"notes"`
	LapNumber        *int    `json:"lap_number"`
	StartedAt        *string `json:"started_at"`
	EndedAt          *string `json:"ended_at"`
}
