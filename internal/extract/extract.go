// Package extract turns untrusted model text into validated quiz items.
// It never repairs what the model produced; deviations are reported with
// the raw text attached.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var blockPattern = regexp.MustCompile(`(?s)<<<JSON(.*?)JSON;`)

// QuizItem is one multiple-choice question. The JSON field names are part
// of the model-facing contract.
type QuizItem struct {
	Question       string      `json:"question"`
	Options        []string    `json:"options"`
	CorrectIndex   int         `json:"correct_index"`
	Explanation    string      `json:"explanation"`
	SourceSentence SentenceRef `json:"source_sentence"`
}

// CorrectOption returns the text of the correct option.
func (q QuizItem) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// SentenceRef is the context sentence number a question is based on.
// Models sometimes quote it or leave it out; anything unparseable reads as 0.
type SentenceRef int

func (r *SentenceRef) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		*r = SentenceRef(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*r = SentenceRef(int(f))
		return nil
	}
	*r = 0
	return nil
}

// Block returns the interior of the first delimited block in raw.
func Block(raw string) (string, bool) {
	m := blockPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Items parses and validates quiz items from raw model text. When
// expectedCount is positive the array length must match it exactly.
func Items(raw string, expectedCount int) ([]QuizItem, error) {
	payload, ok := Block(raw)
	if !ok {
		trimmed := strings.TrimSpace(raw)
		if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
			return nil, &ErrNoStructuredOutput{Raw: raw}
		}
		payload = trimmed
	}

	elems, err := decodeArray(payload)
	if err != nil {
		return nil, &ErrInvalidJSONBlock{Raw: payload, Err: err}
	}

	if expectedCount > 0 && len(elems) != expectedCount {
		return nil, &ErrItemCountMismatch{Expected: expectedCount, Got: len(elems), Raw: payload}
	}

	items := make([]QuizItem, len(elems))
	for i, elem := range elems {
		item, err := decodeItem(elem)
		if err != nil {
			return nil, &ErrInvalidQuizItem{Index: i, Raw: payload, Err: err}
		}
		items[i] = item
	}
	return items, nil
}

// Reply cleans a free-text chat answer. A delimited block, if the model
// produced one anyway, is unwrapped.
func Reply(raw string) (string, error) {
	text := raw
	if inner, ok := Block(raw); ok {
		text = inner
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ErrNoStructuredOutput{Raw: raw}
	}
	return text, nil
}

var errNotArray = errors.New("expected a JSON array")

func decodeArray(payload string) ([]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	if _, ok := v.([]any); !ok {
		return nil, errNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

func decodeItem(elem json.RawMessage) (QuizItem, error) {
	if err := validateItem(elem); err != nil {
		return QuizItem{}, err
	}

	var item QuizItem
	dec := json.NewDecoder(bytes.NewReader(elem))
	if err := dec.Decode(&item); err != nil {
		return QuizItem{}, err
	}
	return item, nil
}
