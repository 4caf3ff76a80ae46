package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("session not found")
	ErrForbidden    = errors.New("session belongs to another user")
	ErrActiveExists = errors.New("an active session already exists")
)

const maxItemMinutes = 480

func errValidationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

var statuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "abandoned": true,
}

var itemTypes = map[string]bool{
	"scale": true, "piece": true, "technique": true,
	"exercise": true, "warmup": true, "other": true,
}

var difficulties = map[string]bool{
	"beginner": true, "intermediate": true, "advanced": true,
}

var instruments = map[string]bool{
	"piano": true, "guitar": true, "bass": true, "violin": true,
	"viola": true, "cello": true, "drums": true, "voice": true,
	"flute": true, "clarinet": true, "saxophone": true, "trumpet": true,
	"trombone": true, "ukulele": true, "other": true,
}

var clockOffsetRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("%w: practice_date must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

// normalizeStatus lowercases and checks the lifecycle enum. Empty input
// defaults to completed, which is what the timer client submits.
func normalizeStatus(s string) (string, error) {
	if s == "" {
		return "completed", nil
	}
	s = strings.ToLower(s)
	if !statuses[s] {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return s, nil
}

func normalizeInstrument(s *string) (*string, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v := strings.ToLower(*s)
	if !instruments[v] {
		return nil, fmt.Errorf("%w: unknown instrument %q", ErrValidation, *s)
	}
	return &v, nil
}

func validateSession(in *CreateSessionInput) error {
	if err := validateDate(in.PracticeDate); err != nil {
		return err
	}
	if in.TotalDuration < 1 {
		return fmt.Errorf("%w: total_duration must be at least 1 minute", ErrValidation)
	}
	if in.ActualDuration != nil && *in.ActualDuration < 1 {
		return fmt.Errorf("%w: actual_duration must be at least 1 minute", ErrValidation)
	}

	status, err := normalizeStatus(in.Status)
	if err != nil {
		return err
	}
	in.Status = status

	instrument, err := normalizeInstrument(in.Instrument)
	if err != nil {
		return err
	}
	in.Instrument = instrument
	return nil
}

func validateItem(in *ItemInput) error {
	in.ItemType = strings.ToLower(in.ItemType)
	if !itemTypes[in.ItemType] {
		return fmt.Errorf("%w: unknown item_type %q", ErrValidation, in.ItemType)
	}
	if in.ItemName == "" {
		return fmt.Errorf("%w: item_name required", ErrValidation)
	}
	if in.TempoBPM != nil && *in.TempoBPM <= 0 {
		return fmt.Errorf("%w: tempo_bpm must be positive", ErrValidation)
	}
	if in.TimeSpentMinutes < 0 || in.TimeSpentMinutes > maxItemMinutes {
		return fmt.Errorf("%w: time_spent_minutes must be between 0 and %d", ErrValidation, maxItemMinutes)
	}
	if in.DifficultyLevel != nil {
		d := strings.ToLower(*in.DifficultyLevel)
		if !difficulties[d] {
			return fmt.Errorf("%w: unknown difficulty_level %q", ErrValidation, *in.DifficultyLevel)
		}
		in.DifficultyLevel = &d
	}
	if len(in.Notes) > 1000 {
		return fmt.Errorf("%w: notes must be 1000 characters or fewer", ErrValidation)
	}
	if in.LapNumber != nil && *in.LapNumber < 1 {
		return fmt.Errorf("%w: lap_number must be 1 or greater", ErrValidation)
	}
	for _, marker := range []*string{in.StartedAt, in.EndedAt} {
		if marker != nil && !clockOffsetRe.MatchString(*marker) {
			return fmt.Errorf("%w: lap markers must be HH:MM:SS", ErrValidation)
		}
	}
	return nil
}
