package progress

import (
	"fmt"
	"time"
)

// Summary is a read-only view of a learner's progression.
type Summary struct {
	UserID              string           `json:"user_id"`
	InProgress          []ModuleID       `json:"in_progress"`
	Completed           []ModuleID       `json:"completed"`
	Allowed             []ModuleID       `json:"allowed"`
	QuizCounts          map[ModuleID]int `json:"quiz_counts"`
	CurrentStreak       int              `json:"current_streak"`
	LongestStreak       int              `json:"longest_streak"`
	TotalScore          int              `json:"total_score"`
	LastQuizDate        string           `json:"last_quiz_date,omitempty"`
	LastDailyQuizDate   string           `json:"last_daily_quiz_date,omitempty"`
	DailyCompletedToday bool             `json:"daily_completed_today"`
}

// DateLayout is the calendar date format used in summaries and storage.
const DateLayout = "2006-01-02"

// Summarize builds the view of p for userID as of today.
func (p UserProgress) Summarize(userID string, today time.Time) Summary {
	counts := make(map[ModuleID]int, len(p.QuizCounts))
	for id, n := range p.QuizCounts {
		counts[id] = n
	}
	return Summary{
		UserID:              userID,
		InProgress:          p.InProgress.Sorted(),
		Completed:           p.Completed.Sorted(),
		Allowed:             p.InProgress.Union(p.Completed).Sorted(),
		QuizCounts:          counts,
		CurrentStreak:       p.CurrentStreak,
		LongestStreak:       p.LongestStreak,
		TotalScore:          p.TotalScore,
		LastQuizDate:        FormatDate(p.LastQuizDate),
		LastDailyQuizDate:   FormatDate(p.LastDailyQuizDate),
		DailyCompletedToday: p.DailyCompleted(today),
	}
}

// FormatDate renders t as DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate is the inverse of FormatDate.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ErrDailyAlreadyCompleted is returned when a daily quiz is requested
// after one was already passed today. It carries the current progression
// so callers can render it without another lookup.
type ErrDailyAlreadyCompleted struct {
	Progress Summary
}

func (e *ErrDailyAlreadyCompleted) Error() string {
	return fmt.Sprintf("daily quiz already completed on %s", e.Progress.LastDailyQuizDate)
}
