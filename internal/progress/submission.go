package progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is the transient result of one quiz attempt.
// Pointer fields are optional. QuizIndex is not range checked: an index
// that is not the module's next quiz only leaves the counter alone.
type Submission struct {
	Score     *int      `json:"score,omitempty" validate:"omitempty,gte=0"`
	MaxScore  *int      `json:"max_score,omitempty" validate:"omitempty,gte=0"`
	Correct   *int      `json:"correct,omitempty" validate:"omitempty,gte=0"`
	Total     *int      `json:"total,omitempty" validate:"omitempty,gte=0"`
	Module    *ModuleID `json:"module,omitempty" validate:"omitempty,gte=1"`
	QuizIndex *int      `json:"quiz_index,omitempty"`
	Daily     bool      `json:"daily"`
}

// ErrInvalidSubmission reports a submission that cannot be applied.
type ErrInvalidSubmission struct {
	Fields []string
	Err    error
}

func (e *ErrInvalidSubmission) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid submission (%s): %v", strings.Join(e.Fields, ", "), e.Err)
	}
	return fmt.Sprintf("invalid submission: %v", e.Err)
}

func (e *ErrInvalidSubmission) Unwrap() error { return e.Err }

var errScoreRequired = errors.New("score or correct required")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that at least one of score and
// correct is present.
func (s Submission) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return &ErrInvalidSubmission{Fields: fields, Err: err}
		}
		return &ErrInvalidSubmission{Err: err}
	}
	if s.Score == nil && s.Correct == nil {
		return &ErrInvalidSubmission{Fields: []string{"Score", "Correct"}, Err: errScoreRequired}
	}
	return nil
}

// Percent computes the quiz percentage. correct/total takes priority,
// then score/max_score, then the raw score.
func (s Submission) Percent() float64 {
	switch {
	case s.Correct != nil && s.Total != nil && *s.Total > 0:
		return float64(*s.Correct) * 100 / float64(*s.Total)
	case s.Score != nil && s.MaxScore != nil && *s.MaxScore > 0:
		return float64(*s.Score) * 100 / float64(*s.MaxScore)
	case s.Score != nil:
		return float64(*s.Score)
	default:
		return 0
	}
}

// Points is the amount added to the learner's total score.
func (s Submission) Points() int {
	if s.Correct != nil {
		return *s.Correct
	}
	if s.Score != nil {
		return *s.Score
	}
	return 0
}
