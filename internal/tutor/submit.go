package tutor

import (
	"context"

	"github.com/AlexMoto69/uplearn/internal/progress"
)

// SubmissionReport is the result of RecordSubmission.
type SubmissionReport struct {
	Outcome  progress.Outcome `json:"outcome"`
	Progress progress.Summary `json:"progress"`
}

// RecordSubmission applies a quiz result to the learner's progression.
// The load, apply and save run atomically per learner; an invalid
// submission leaves the record untouched.
func (s *Service) RecordSubmission(ctx context.Context, userID string, sub progress.Submission) (*SubmissionReport, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	today := s.today()
	var outcome progress.Outcome
	next, err := s.progress.Update(ctx, userID, func(p progress.UserProgress) (progress.UserProgress, error) {
		n, out, err := progress.Apply(p, sub, today)
		if err != nil {
			return p, err
		}
		outcome = out
		return n, nil
	})
	if err != nil {
		return nil, err
	}

	if t := outcome.Transition; t != nil {
		s.logger.Info("module state changed",
			"user", userID,
			"module", int(t.Module),
			"from", string(t.From),
			"to", string(t.To),
			"trigger", t.Trigger,
		)
	}
	for _, w := range outcome.Warnings {
		s.logger.Debug("submission warning", "user", userID, "warning", string(w))
	}

	return &SubmissionReport{
		Outcome:  outcome,
		Progress: next.Summarize(userID, today),
	}, nil
}
