package extract

import (
	"errors"
	"fmt"
)

// ErrNoStructuredOutput means the model text held neither a delimited
// block nor a bare JSON array.
type ErrNoStructuredOutput struct {
	Raw string
}

func (e *ErrNoStructuredOutput) Error() string {
	return "no structured output found in model response"
}

func (e *ErrNoStructuredOutput) RawText() string { return e.Raw }

// ErrInvalidJSONBlock means the structured block was found but is not a
// JSON array. Raw holds the block interior.
type ErrInvalidJSONBlock struct {
	Raw string
	Err error
}

func (e *ErrInvalidJSONBlock) Error() string {
	return fmt.Sprintf("invalid JSON block: %v", e.Err)
}

func (e *ErrInvalidJSONBlock) Unwrap() error { return e.Err }

func (e *ErrInvalidJSONBlock) RawText() string { return e.Raw }

// ErrItemCountMismatch means the array length differs from the requested count.
type ErrItemCountMismatch struct {
	Expected int
	Got      int
	Raw      string
}

func (e *ErrItemCountMismatch) Error() string {
	return fmt.Sprintf("expected %d quiz items, got %d", e.Expected, e.Got)
}

func (e *ErrItemCountMismatch) RawText() string { return e.Raw }

// ErrInvalidQuizItem means one array element does not have the quiz item
// shape. Raw holds the block interior.
type ErrInvalidQuizItem struct {
	Index int
	Raw   string
	Err   error
}

func (e *ErrInvalidQuizItem) Error() string {
	return fmt.Sprintf("invalid quiz item %d: %v", e.Index, e.Err)
}

func (e *ErrInvalidQuizItem) Unwrap() error { return e.Err }

func (e *ErrInvalidQuizItem) RawText() string { return e.Raw }

// RawText returns the model text attached to an extraction error.
func RawText(err error) (string, bool) {
	var rc interface{ RawText() string }
	if errors.As(err, &rc) {
		return rc.RawText(), true
	}
	return "", false
}
