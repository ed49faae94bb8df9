// Package progress holds a learner's curriculum progression and the pure
// state machine that applies quiz results to it.
package progress

import (
	"sort"
	"time"
)

// QuizzesPerModule is the number of passed, in-sequence quizzes that
// complete a module.
const QuizzesPerModule = 8

// PassThreshold is the minimum percentage for a quiz to count as passed.
const PassThreshold = 70.0

// ModuleID identifies a curriculum module. Valid IDs are positive.
type ModuleID int

// ModuleState is a module's position in the progression lifecycle.
type ModuleState string

const (
	StateUntouched  ModuleState = "untouched"
	StateInProgress ModuleState = "in_progress"
	StateCompleted  ModuleState = "completed"
)

// Transition records a module state change.
type Transition struct {
	Module  ModuleID
	From    ModuleState
	To      ModuleState
	Trigger string // "first-submission", "quizzes-complete"
}

// ModuleSet is a set of module IDs.
type ModuleSet map[ModuleID]struct{}

// NewModuleSet builds a set from ids.
func NewModuleSet(ids ...ModuleID) ModuleSet {
	s := make(ModuleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ModuleSet) Has(id ModuleID) bool {
	_, ok := s[id]
	return ok
}

func (s ModuleSet) Add(id ModuleID)    { s[id] = struct{}{} }
func (s ModuleSet) Remove(id ModuleID) { delete(s, id) }

// Sorted returns the members in ascending order.
func (s ModuleSet) Sorted() []ModuleID {
	out := make([]ModuleID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Union returns a new set holding members of s and other.
func (s ModuleSet) Union(other ModuleSet) ModuleSet {
	out := make(ModuleSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// UserProgress is one learner's persisted progression record.
// Zero dates mean "never".
type UserProgress struct {
	InProgress        ModuleSet
	Completed         ModuleSet
	QuizCounts        map[ModuleID]int
	LastQuizDate      time.Time
	CurrentStreak     int
	LongestStreak     int
	LastDailyQuizDate time.Time
	TotalScore        int
}

// Default returns the record of a learner who has never submitted a quiz.
func Default() UserProgress {
	return UserProgress{
		InProgress: ModuleSet{},
		Completed:  ModuleSet{},
		QuizCounts: map[ModuleID]int{},
	}
}

// Clone returns a deep copy of p.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.InProgress = p.InProgress.Union(nil)
	out.Completed = p.Completed.Union(nil)
	out.QuizCounts = make(map[ModuleID]int, len(p.QuizCounts))
	for id, n := range p.QuizCounts {
		out.QuizCounts[id] = n
	}
	return out
}

// Normalize restores the record invariants on data read from storage:
// the two module sets are disjoint, counts lie in [0, QuizzesPerModule],
// a module at the full count is completed, and the longest streak is at
// least the current one.
func (p UserProgress) Normalize() UserProgress {
	out := p.Clone()

	for id := range out.InProgress {
		if id <= 0 {
			out.InProgress.Remove(id)
		}
	}
	for id := range out.Completed {
		if id <= 0 {
			out.Completed.Remove(id)
			continue
		}
		out.InProgress.Remove(id)
	}

	for id, n := range out.QuizCounts {
		switch {
		case id <= 0:
			delete(out.QuizCounts, id)
			continue
		case n < 0:
			n = 0
		case n > QuizzesPerModule:
			n = QuizzesPerModule
		}
		out.QuizCounts[id] = n
		if n == QuizzesPerModule && out.InProgress.Has(id) {
			out.InProgress.Remove(id)
			out.Completed.Add(id)
		}
	}

	if out.CurrentStreak < 0 {
		out.CurrentStreak = 0
	}
	if out.LongestStreak < out.CurrentStreak {
		out.LongestStreak = out.CurrentStreak
	}
	if !out.LastQuizDate.IsZero() {
		out.LastQuizDate = Day(out.LastQuizDate)
	}
	if !out.LastDailyQuizDate.IsZero() {
		out.LastDailyQuizDate = Day(out.LastDailyQuizDate)
	}
	return out
}

// StateOf reports where module id sits in the lifecycle.
func (p UserProgress) StateOf(id ModuleID) ModuleState {
	switch {
	case p.Completed.Has(id):
		return StateCompleted
	case p.InProgress.Has(id):
		return StateInProgress
	default:
		return StateUntouched
	}
}

// DailyCompleted reports whether a daily quiz was passed on today.
func (p UserProgress) DailyCompleted(today time.Time) bool {
	return !p.LastDailyQuizDate.IsZero() && p.LastDailyQuizDate.Equal(Day(today))
}

// Day truncates t to midnight of its calendar date, expressed in UTC so
// dates compare with Equal regardless of the source location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
