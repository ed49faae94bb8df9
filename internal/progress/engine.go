package progress

import (
	"fmt"
	"time"
)

// Warning is a non-fatal note about how a submission was applied.
type Warning string

const (
	// WarningSequenceMismatch: the quiz passed but its index was not the
	// next one for the module, so the counter did not move.
	WarningSequenceMismatch Warning = "sequence_mismatch"

	// WarningModuleCompleted: the module was already completed; its
	// counter no longer moves.
	WarningModuleCompleted Warning = "module_completed"
)

// Outcome describes what Apply did.
type Outcome struct {
	Points     int
	Percent    float64
	Passed     bool
	Counted    bool // module quiz counter advanced
	QuizCount  int  // module quiz counter after the submission
	Transition *Transition
	Warnings   []Warning
}

// Apply folds one validated submission into p as of today and returns the
// new record. p is not modified. Apply fails only when s is invalid.
func Apply(p UserProgress, s Submission, today time.Time) (UserProgress, Outcome, error) {
	if err := s.Validate(); err != nil {
		return p, Outcome{}, err
	}

	next := p.Clone()
	today = Day(today)

	out := Outcome{
		Points:  s.Points(),
		Percent: s.Percent(),
	}
	out.Passed = out.Percent >= PassThreshold

	next.TotalScore += out.Points
	applyStreak(&next, today)

	if s.Module != nil {
		applyModule(&next, *s.Module, s.QuizIndex, &out)
	}

	if s.Daily && out.Passed {
		next.LastDailyQuizDate = today
	}

	return next, out, nil
}

func applyStreak(p *UserProgress, today time.Time) {
	switch {
	case p.LastQuizDate.IsZero():
		p.CurrentStreak = 1
	case Day(p.LastQuizDate).Equal(today.AddDate(0, 0, -1)):
		p.CurrentStreak++
	case Day(p.LastQuizDate).Equal(today):
		// Same day: unchanged.
	default:
		p.CurrentStreak = 1
	}
	if p.LongestStreak < p.CurrentStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastQuizDate = today
}

func applyModule(p *UserProgress, id ModuleID, quizIndex *int, out *Outcome) {
	if p.Completed.Has(id) {
		out.QuizCount = p.QuizCounts[id]
		out.Warnings = append(out.Warnings, WarningModuleCompleted)
		return
	}

	if !p.InProgress.Has(id) {
		p.InProgress.Add(id)
		out.Transition = &Transition{
			Module:  id,
			From:    StateUntouched,
			To:      StateInProgress,
			Trigger: "first-submission",
		}
	}

	count := p.QuizCounts[id]
	if out.Passed {
		if quizIndex == nil || *quizIndex == count+1 {
			count = min(count+1, QuizzesPerModule)
			p.QuizCounts[id] = count
			out.Counted = true
		} else {
			out.Warnings = append(out.Warnings, WarningSequenceMismatch)
		}
	}
	out.QuizCount = count

	if count >= QuizzesPerModule {
		p.InProgress.Remove(id)
		p.Completed.Add(id)
		out.Transition = &Transition{
			Module:  id,
			From:    StateInProgress,
			To:      StateCompleted,
			Trigger: "quizzes-complete",
		}
	}
}

// Describe renders a one-line human summary of the outcome.
func (o Outcome) Describe() string {
	verdict := "failed"
	if o.Passed {
		verdict = "passed"
	}
	s := fmt.Sprintf("%s with %.0f%% (+%d points)", verdict, o.Percent, o.Points)
	if o.Transition != nil {
		s += fmt.Sprintf(", module %d %s → %s", o.Transition.Module, o.Transition.From, o.Transition.To)
	}
	return s
}
