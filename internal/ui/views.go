package ui

import (
	"fmt"
	"strings"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/tutor"
)

const barWidth = 40

var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

// QuizView renders a quiz. With reveal set the correct option is marked
// and its explanation shown under each question.
func QuizView(q *tutor.Quiz, reveal bool) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s quiz", q.Meta.Kind)
	if len(q.Meta.Modules) > 0 {
		title += " · modules " + joinModules(q.Meta.Modules)
	}
	sb.WriteString(Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(Subtitle.Render(fmt.Sprintf("%d questions · %s · %s", q.Meta.Count, q.Meta.Model, q.Meta.ID)))
	sb.WriteString("\n")
	if q.Meta.AlreadyCompletedToday {
		sb.WriteString(Warn.Render("Today's daily quiz is already done; this one is extra practice."))
		sb.WriteString("\n")
	}

	for i, item := range q.Items {
		sb.WriteString("\n")
		sb.WriteString(Body.Render(fmt.Sprintf("%d. %s", i+1, item.Question)))
		sb.WriteString("\n")
		for j, opt := range item.Options {
			line := fmt.Sprintf("   %s) %s", letter(j), opt)
			if reveal && j == item.CorrectIndex {
				sb.WriteString(Correct.Render(line + " ✓"))
			} else {
				sb.WriteString(Body.Render(line))
			}
			sb.WriteString("\n")
		}
		if reveal && item.Explanation != "" {
			sb.WriteString(Hint.Render("   " + item.Explanation))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// SummaryView renders a learner's progression.
func SummaryView(s progress.Summary) string {
	var sb strings.Builder

	sb.WriteString(Title.Render("Progress · " + s.UserID))
	sb.WriteString("\n\n")

	stats := []string{
		fmt.Sprintf("Score          %d", s.TotalScore),
		fmt.Sprintf("Streak         %d (longest %d)", s.CurrentStreak, s.LongestStreak),
		fmt.Sprintf("Last quiz      %s", orNever(s.LastQuizDate)),
		fmt.Sprintf("Daily quiz     %s", dailyStatus(s)),
	}
	sb.WriteString(Card.Render(strings.Join(stats, "\n")))
	sb.WriteString("\n")

	if len(s.Allowed) == 0 {
		sb.WriteString("\n")
		sb.WriteString(Hint.Render("No modules started yet. Submit a quiz for a module to begin."))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, id := range s.Allowed {
		bar := ProgressBar{
			Label:     fmt.Sprintf("Module %-2d", id),
			Done:      s.QuizCounts[id],
			Total:     progress.QuizzesPerModule,
			ShowCount: true,
			Width:     barWidth,
		}
		sb.WriteString(bar.View())
		sb.WriteString("  ")
		if containsModule(s.Completed, id) {
			sb.WriteString(Completed.Render("completed"))
		} else {
			sb.WriteString(InProgress.Render("in progress"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// OutcomeView renders the result of a recorded submission.
func OutcomeView(r *tutor.SubmissionReport) string {
	var sb strings.Builder

	o := r.Outcome
	if o.Passed {
		sb.WriteString(Correct.Render(fmt.Sprintf("Passed · %.0f%%", o.Percent)))
	} else {
		sb.WriteString(Incorrect.Render(fmt.Sprintf("Not passed · %.0f%% (need %.0f%%)", o.Percent, progress.PassThreshold)))
	}
	sb.WriteString(Subtitle.Render(fmt.Sprintf("  +%d points", o.Points)))
	sb.WriteString("\n")

	if t := o.Transition; t != nil {
		sb.WriteString(InProgress.Render(fmt.Sprintf("Module %d: %s → %s", t.Module, t.From, t.To)))
		sb.WriteString("\n")
	}
	for _, w := range o.Warnings {
		sb.WriteString(Warn.Render(warningText(w)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(SummaryView(r.Progress))
	return sb.String()
}

func warningText(w progress.Warning) string {
	switch w {
	case progress.WarningSequenceMismatch:
		return "Quiz number is not the next one for this module; the counter did not move."
	case progress.WarningModuleCompleted:
		return "Module already completed; the counter no longer moves."
	default:
		return string(w)
	}
}

func dailyStatus(s progress.Summary) string {
	if s.DailyCompletedToday {
		return "done today"
	}
	return "available"
}

func orNever(date string) string {
	if date == "" {
		return "never"
	}
	return date
}

func letter(i int) string {
	if i < len(optionLetters) {
		return optionLetters[i]
	}
	return fmt.Sprint(i + 1)
}

func joinModules(ids []progress.ModuleID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int(id))
	}
	return strings.Join(parts, ", ")
}

func containsModule(ids []progress.ModuleID, id progress.ModuleID) bool {
	for _, m := range ids {
		if m == id {
			return true
		}
	}
	return false
}
