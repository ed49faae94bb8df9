// Package access decides which curriculum modules a learner may draw
// content from.
package access

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlexMoto69/uplearn/internal/progress"
)

// ErrNoModulesAvailable is returned when a learner has neither started nor
// completed any module.
var ErrNoModulesAvailable = errors.New("no modules available: start a module first")

// ErrModuleNotAllowed names the first requested module outside the
// learner's allowed set.
type ErrModuleNotAllowed struct {
	Module  progress.ModuleID
	Allowed []progress.ModuleID
}

func (e *ErrModuleNotAllowed) Error() string {
	return fmt.Sprintf("module %d is not available (allowed: %s)", e.Module, join(e.Allowed))
}

// ErrInvalidModuleParameter is returned when a selector yields no module IDs.
type ErrInvalidModuleParameter struct {
	Param string
}

func (e *ErrInvalidModuleParameter) Error() string {
	return fmt.Sprintf("invalid module parameter %q", e.Param)
}

// AllowedModules is the union of in-progress and completed modules.
func AllowedModules(p progress.UserProgress) progress.ModuleSet {
	return p.InProgress.Union(p.Completed)
}

// ValidateRequest resolves a module selector against the allowed set and
// returns the selected modules sorted ascending without duplicates.
//
// An empty selector, "all", "*" or "any" selects every allowed module.
// Otherwise the selector is a comma separated list of IDs and inclusive
// ranges ("1,3-5"); malformed tokens are skipped. Ranges have no upper
// bound; the smallest ID outside the allowed set is reported.
func ValidateRequest(requested string, allowed progress.ModuleSet) ([]progress.ModuleID, error) {
	sel := strings.TrimSpace(requested)

	if isWildcard(sel) {
		if len(allowed) == 0 {
			return nil, ErrNoModulesAvailable
		}
		return allowed.Sorted(), nil
	}

	spans := Parse(sel)
	if len(spans) == 0 {
		return nil, &ErrInvalidModuleParameter{Param: requested}
	}

	var offending progress.ModuleID
	for _, sp := range spans {
		if id, ok := sp.firstOutside(allowed); ok && (offending == 0 || id < offending) {
			offending = id
		}
	}
	if offending != 0 {
		return nil, &ErrModuleNotAllowed{Module: offending, Allowed: allowed.Sorted()}
	}

	// Every span lies inside allowed, so expanding them is bounded by it.
	set := progress.ModuleSet{}
	for _, sp := range spans {
		for id := sp.Lo; ; id++ {
			set.Add(id)
			if id == sp.Hi {
				break
			}
		}
	}
	return set.Sorted(), nil
}

// Span is an inclusive run of module IDs; a single ID has Lo == Hi.
type Span struct {
	Lo, Hi progress.ModuleID
}

// firstOutside returns the smallest ID of s missing from allowed. It walks
// at most len(allowed)+1 IDs.
func (s Span) firstOutside(allowed progress.ModuleSet) (progress.ModuleID, bool) {
	for id := s.Lo; ; id++ {
		if !allowed.Has(id) {
			return id, true
		}
		if id == s.Hi {
			return 0, false
		}
	}
}

// Parse splits a selector into spans, ignoring malformed, reversed and
// non-positive tokens. Spans keep selector order and may overlap.
func Parse(sel string) []Span {
	var spans []Span
	for _, tok := range strings.Split(sel, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(tok, "-"); ok {
			a, errA := strconv.Atoi(strings.TrimSpace(lo))
			b, errB := strconv.Atoi(strings.TrimSpace(hi))
			if errA != nil || errB != nil || a <= 0 || b < a {
				continue
			}
			spans = append(spans, Span{Lo: progress.ModuleID(a), Hi: progress.ModuleID(b)})
			continue
		}

		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 {
			continue
		}
		spans = append(spans, Span{Lo: progress.ModuleID(n), Hi: progress.ModuleID(n)})
	}
	return spans
}

func isWildcard(sel string) bool {
	switch strings.ToLower(sel) {
	case "", "all", "*", "any":
		return true
	}
	return false
}

func join(ids []progress.ModuleID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ", ")
}
