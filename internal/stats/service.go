package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"backend-practicelog/internal/db"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("no matching data")
)

// effectiveDuration is the one place the actual-vs-planned fallback lives.
// Every aggregate that sums or averages session time uses this expression.
const effectiveDuration = `COALESCE(actual_duration, total_duration)`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// TotalPracticeTime sums effective durations over an inclusive date window.
// Empty bounds mean all time.
func (s *Service) TotalPracticeTime(ctx context.Context, userID, startDate, endDate string) (TotalTime, error) {
	query := `
		SELECT COALESCE(SUM(` + effectiveDuration + `), 0)::int,
		       COUNT(*)::int,
		       COALESCE(ROUND(AVG(` + effectiveDuration + `)), 0)::int
		FROM practice_sessions
		WHERE user_id=$1`
	args := []any{userID}

	if startDate != "" {
		if err := validDate(startDate); err != nil {
			return TotalTime{}, err
		}
		args = append(args, startDate)
		query += fmt.Sprintf(" AND practice_date >= $%d::date", len(args))
	}
	if endDate != "" {
		if err := validDate(endDate); err != nil {
			return TotalTime{}, err
		}
		args = append(args, endDate)
		query += fmt.Sprintf(" AND practice_date <= $%d::date", len(args))
	}

	var total TotalTime
	row := s.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&total.TotalMinutes, &total.SessionCount, &total.AvgSessionDuration); err != nil {
		return TotalTime{}, err
	}
	total.TotalHours = total.TotalMinutes / 60
	total.RemainingMinutes = total.TotalMinutes % 60
	return total, nil
}

// PracticeStreak counts consecutive calendar days with at least one session
// of positive effective duration, anchored at the most recent practiced day.
func (s *Service) PracticeStreak(ctx context.Context, userID string) (int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT to_char(practice_date, 'YYYY-MM-DD')
		FROM practice_sessions
		WHERE user_id=$1 AND `+effectiveDuration+` > 0
		ORDER BY 1 DESC
	`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return 0, err
		}
		dates = append(dates, day)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return streakFrom(dates), nil
}

// streakFrom expects distinct days sorted descending. Any gap breaks the run.
func streakFrom(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	streak := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

func (s *Service) ConsistencyScore(ctx context.Context, userID string, windowDays int) (Consistency, error) {
	if windowDays < 1 || windowDays > 365 {
		return Consistency{}, fmt.Errorf("%w: days must be between 1 and 365", ErrValidation)
	}

	var practiced int
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT practice_date)::int
		FROM practice_sessions
		WHERE user_id=$1
		  AND `+effectiveDuration+` > 0
		  AND practice_date >= CURRENT_DATE - $2::int
		  AND practice_date <= CURRENT_DATE
	`, userID, windowDays)
	if err := row.Scan(&practiced); err != nil {
		return Consistency{}, err
	}

	return Consistency{
		DaysPracticed:         practiced,
		TotalDays:             windowDays,
		ConsistencyPercentage: round1(float64(practiced) / float64(windowDays) * 100),
	}, nil
}

func (s *Service) TopItems(ctx context.Context, userID string, limit int) ([]TopItem, error) {
	if limit < 1 || limit > 50 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 50", ErrValidation)
	}

	rows, err := s.db.Query(ctx, `
		SELECT i.item_name, i.item_type, COUNT(*)::int,
		       ROUND(AVG(i.tempo_bpm))::int,
		       COALESCE(SUM(i.time_spent_minutes), 0)::int
		FROM session_items i
		JOIN practice_sessions s ON s.id = i.session_id
		WHERE s.user_id=$1
		GROUP BY i.item_name, i.item_type
		ORDER BY COUNT(*) DESC, SUM(i.time_spent_minutes) DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TopItem
	for rows.Next() {
		var it TopItem
		if err := rows.Scan(&it.ItemName, &it.ItemType, &it.PracticeCount, &it.AvgTempo, &it.TotalMinutes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Service) TempoProgression(ctx context.Context, userID, itemName string) (TempoProgression, error) {
	rows, err := s.db.Query(ctx, `
		SELECT to_char(s.practice_date, 'YYYY-MM-DD'), i.tempo_bpm, i.difficulty_level
		FROM session_items i
		JOIN practice_sessions s ON s.id = i.session_id
		WHERE s.user_id=$1 AND i.item_name=$2 AND i.tempo_bpm IS NOT NULL
		ORDER BY s.practice_date, i.created_at
	`, userID, itemName)
	if err != nil {
		return TempoProgression{}, err
	}
	defer rows.Close()

	var points []TempoPoint
	for rows.Next() {
		var p TempoPoint
		if err := rows.Scan(&p.Date, &p.TempoBPM, &p.DifficultyLevel); err != nil {
			return TempoProgression{}, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return TempoProgression{}, err
	}
	if len(points) == 0 {
		return TempoProgression{}, fmt.Errorf("%w: no tempo records for %q", ErrNotFound, itemName)
	}

	first := points[0].TempoBPM
	last := points[len(points)-1].TempoBPM
	summary := TempoSummary{
		FirstTempo:     first,
		LatestTempo:    last,
		ImprovementBPM: last - first,
	}
	if first != 0 {
		summary.ImprovementPercentage = round1(float64(last-first) / float64(first) * 100)
	}

	return TempoProgression{ItemName: itemName, Progression: points, Summary: summary}, nil
}

func (s *Service) SessionTrends(ctx context.Context, userID string, weeks int) ([]WeekTrend, error) {
	if weeks < 1 || weeks > 52 {
		return nil, fmt.Errorf("%w: weeks must be between 1 and 52", ErrValidation)
	}

	rows, err := s.db.Query(ctx, `
		SELECT to_char(date_trunc('week', practice_date), 'YYYY-MM-DD'),
		       COUNT(*)::int,
		       COALESCE(ROUND(AVG(`+effectiveDuration+`), 1), 0)::float8,
		       COALESCE(SUM(`+effectiveDuration+`), 0)::int
		FROM practice_sessions
		WHERE user_id=$1 AND practice_date >= CURRENT_DATE - ($2::int * 7)
		GROUP BY 1
		ORDER BY 1
	`, userID, weeks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []WeekTrend
	for rows.Next() {
		var tr WeekTrend
		if err := rows.Scan(&tr.WeekStart, &tr.SessionCount, &tr.AvgDuration, &tr.TotalMinutes); err != nil {
			return nil, err
		}
		trends = append(trends, tr)
	}
	return trends, rows.Err()
}

func (s *Service) InstrumentBreakdown(ctx context.Context, userID string) ([]InstrumentStat, error) {
	rows, err := s.db.Query(ctx, `
		SELECT COALESCE(instrument, 'not specified'),
		       COUNT(*)::int,
		       COALESCE(SUM(`+effectiveDuration+`), 0)::int,
		       COALESCE(ROUND(AVG(`+effectiveDuration+`), 1), 0)::float8
		FROM practice_sessions
		WHERE user_id=$1
		GROUP BY 1
		ORDER BY 3 DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []InstrumentStat
	grandTotal := 0
	for rows.Next() {
		var st InstrumentStat
		if err := rows.Scan(&st.Instrument, &st.SessionCount, &st.TotalMinutes, &st.AvgDuration); err != nil {
			return nil, err
		}
		grandTotal += st.TotalMinutes
		breakdown = append(breakdown, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range breakdown {
		if grandTotal > 0 {
			breakdown[i].Percentage = round1(float64(breakdown[i].TotalMinutes) / float64(grandTotal) * 100)
		}
	}
	return breakdown, nil
}

func validDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
