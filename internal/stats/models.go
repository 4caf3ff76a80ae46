package stats

type TotalTime struct {
	TotalMinutes       int `json:"total_minutes"`
	TotalHours         int `json:"total_hours"`
	RemainingMinutes   int `json:"remaining_minutes"`
	SessionCount       int `json:"session_count"`
	AvgSessionDuration int `json:"avg_session_duration"`
}

type Streak struct {
	CurrentStreak int    `json:"current_streak"`
	Message       string `json:"message"`
}

type Consistency struct {
	DaysPracticed         int     `json:"days_practiced"`
	TotalDays             int     `json:"total_days"`
	ConsistencyPercentage float64 `json:"consistency_percentage"`
	Grade                 string  `json:"grade"`
}

type TopItem struct {
	ItemName      string `json:"item_name"`
	ItemType      string `json:"item_type"`
	PracticeCount int    `json:"practice_count"`
	AvgTempo      *int   `json:"avg_tempo"`
	TotalMinutes  int    `json:"total_minutes"`
}

type TempoPoint struct {
	Date            string  `json:"date"`
	TempoBPM        int     `json:"tempo_bpm"`
	DifficultyLevel *string `json:"difficulty_level"`
}

type TempoSummary struct {
	FirstTempo            int     `json:"first_tempo"`
	LatestTempo           int     `json:"latest_tempo"`
	ImprovementBPM        int     `json:"improvement_bpm"`
	ImprovementPercentage float64 `json:"improvement_percentage"`
}

type TempoProgression struct {
	ItemName    string       `json:"item_name"`
	Progression []TempoPoint `json:"progression"`
	Summary     TempoSummary `json:"summary"`
}

type WeekTrend struct {
	WeekStart    string  `json:"week_start"`
	SessionCount int     `json:"session_count"`
	AvgDuration  float64 `json:"avg_duration"`
	TotalMinutes int     `json:"total_minutes"`
}

type InstrumentStat struct {
	Instrument   string  `json:"instrument"`
	SessionCount int     `json:"session_count"`
	TotalMinutes int     `json:"total_minutes"`
	AvgDuration  float64 `json:"avg_duration"`
	Percentage   float64 `json:"percentage"`
}
