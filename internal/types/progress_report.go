package types

type ProgressStats struct {
	AvgAccuracy        float64  `json:"avg_accuracy"`
	ImprovementPercent float64  `json:"improvement_percent"`
	SessionsCompleted  int      `json:"sessions_completed"`
	FavoriteTopic      string   `json:"favorite_topic"`
	BadgesEarned       []string `json:"badges_earned"`
}

// ProgressReport is the read-side view of a student record: the raw record
// fields plus derived statistics (nil when the student has no sessions yet).
type ProgressReport struct {
	StudentID        string           `json:"student_id"`
	Sessions         []ReadingSession `json:"sessions"`
	TotalWordsRead   int              `json:"total_words_read"`
	TotalTimeMinutes float64          `json:"total_time_minutes"`
	StreakDays       int              `json:"streak_days"`
	Statistics       *ProgressStats   `json:"statistics,omitempty"`
}
