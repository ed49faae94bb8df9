package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexMoto69/uplearn/internal/access"
	"github.com/AlexMoto69/uplearn/internal/extract"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/retrieval"
)

// Kind names a class of failure callers can branch on.
type Kind string

const (
	KindNone                   Kind = ""
	KindNoModulesAvailable     Kind = "NoModulesAvailable"
	KindModuleNotAllowed       Kind = "ModuleNotAllowed"
	KindInvalidModuleParameter Kind = "InvalidModuleParameter"
	KindModuleTextUnavailable  Kind = "ModuleTextUnavailable"
	KindModelUnavailable       Kind = "ModelUnavailable"
	KindModelTimeout           Kind = "ModelTimeout"
	KindNoStructuredOutput     Kind = "NoStructuredOutput"
	KindInvalidJSONBlock       Kind = "InvalidJsonBlock"
	KindItemCountMismatch      Kind = "ItemCountMismatch"
	KindInvalidQuizItem        Kind = "InvalidQuizItem"
	KindDailyAlreadyCompleted  Kind = "DailyAlreadyCompleted"
	KindInvalidSubmission      Kind = "InvalidSubmission"
	KindInvalidInput           Kind = "InvalidInput"
	KindCanceled               Kind = "Canceled"
	KindInternal               Kind = "Internal"
)

// ErrEmptyInput is returned when a required text argument is blank.
type ErrEmptyInput struct {
	Field string
}

func (e *ErrEmptyInput) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// KindOf classifies err, looking through wrapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		notAllowed  *access.ErrModuleNotAllowed
		badParam    *access.ErrInvalidModuleParameter
		noText      *retrieval.ErrModuleTextUnavailable
		timeout     *llm.ErrTimeout
		unavailable *llm.ErrProviderUnavailable
		rateLimit   *llm.ErrRateLimit
		invalidResp *llm.ErrInvalidResponse
		maxTokens   *llm.ErrMaxTokensExceeded
		noOutput    *extract.ErrNoStructuredOutput
		badBlock    *extract.ErrInvalidJSONBlock
		mismatch    *extract.ErrItemCountMismatch
		badItem     *extract.ErrInvalidQuizItem
		dailyDone   *progress.ErrDailyAlreadyCompleted
		badSubmit   *progress.ErrInvalidSubmission
		emptyInput  *ErrEmptyInput
	)

	switch {
	case errors.Is(err, access.ErrNoModulesAvailable):
		return KindNoModulesAvailable
	case errors.As(err, &notAllowed):
		return KindModuleNotAllowed
	case errors.As(err, &badParam):
		return KindInvalidModuleParameter
	case errors.As(err, &noText):
		return KindModuleTextUnavailable
	case errors.As(err, &timeout):
		return KindModelTimeout
	case errors.As(err, &unavailable), errors.As(err, &rateLimit), errors.As(err, &invalidResp):
		return KindModelUnavailable
	case errors.As(err, &noOutput), errors.As(err, &maxTokens):
		return KindNoStructuredOutput
	case errors.As(err, &badBlock):
		return KindInvalidJSONBlock
	case errors.As(err, &mismatch):
		return KindItemCountMismatch
	case errors.As(err, &badItem):
		return KindInvalidQuizItem
	case errors.As(err, &dailyDone):
		return KindDailyAlreadyCompleted
	case errors.As(err, &badSubmit):
		return KindInvalidSubmission
	case errors.As(err, &emptyInput):
		return KindInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// Retryable reports whether asking the model again may succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindModelUnavailable, KindModelTimeout,
		KindNoStructuredOutput, KindInvalidJSONBlock, KindItemCountMismatch, KindInvalidQuizItem:
		return true
	}
	return false
}
