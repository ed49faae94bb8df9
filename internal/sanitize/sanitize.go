// Package sanitize cleans quiz explanations produced by the model so they
// read as standalone statements.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxExplanationWords caps regenerated explanations.
const MaxExplanationWords = 35

var placeholders = map[string]string{
	"ro": "Aceasta este varianta corectă.",
	"en": "This is the correct answer.",
}

// sourcePhrases match locutions that point the learner back at the source
// text instead of explaining. Each one is bounded by non-letters on both
// sides; \b only knows ASCII letters.
var sourcePhrases = []*regexp.Regexp{
	phrase(`(conform|potrivit|după|dupa)\s+(textului|lecției|lecţiei|lectiei|contextului|modulului|materialului|fragmentului)`),
	phrase(`(așa|asa|după|dupa)\s+cum\s+(se\s+)?(spune|arată|arata|menționează|mentioneaza|precizează|reiese)(\s+(în|in|din))?\s+(textul|text|lecția|lecţia|lecție|lectie|context)`),
	phrase(`(în|in)\s+(text|textul|lecție|lecţie|lectie|lecția|context)\s+se\s+(spune|afirmă|afirma|arată|arata|menționează|mentioneaza|precizează)(\s+(că|ca))?`),
	phrase(`(textul|lecția|lecţia|lectia|contextul|fragmentul)\s+(spune|afirmă|afirma|arată|arata|menționează|mentioneaza|precizează|precizeaza)(\s+(că|ca))?`),
	phrase(`according\s+to\s+the\s+(text|lesson|passage|context|module)`),
	phrase(`as\s+(stated|mentioned|described|explained)\s+in\s+the\s+(text|lesson|passage|context)`),
	phrase(`the\s+(text|lesson|passage|context)\s+(states|says|mentions|notes|explains)(\s+that)?`),
}

// phraseReplacement keeps the boundary characters around a removed phrase.
const phraseReplacement = "${pre} ${post}"

func phrase(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?P<pre>^|[^\p{L}])(?:` + body + `)(?P<post>[^\p{L}]|$)`)
}

var leadingConnective = regexp.MustCompile(`(?i)^(deci|astfel|așadar|asadar|prin urmare|de asemenea|totodată|totodata|în concluzie|in concluzie|so|thus|therefore|also|hence)(?:[\s,;:]+|$)`)

var leadingPunct = regexp.MustCompile(`^[\s,;:.\-–—!?)\]]+`)

// Sanitizer cleans explanation text for one language.
type Sanitizer struct {
	policy      *bluemonday.Policy
	placeholder string
}

// New creates a Sanitizer. language selects the placeholder ("ro", "en").
func New(language string) *Sanitizer {
	ph, ok := placeholders[strings.ToLower(language)]
	if !ok {
		ph = placeholders["ro"]
	}
	return &Sanitizer{
		policy:      bluemonday.StrictPolicy(),
		placeholder: ph,
	}
}

// Placeholder is the sentence returned when nothing usable remains.
func (s *Sanitizer) Placeholder() string {
	return s.placeholder
}

// Sanitize strips markup and source-referencing phrases, collapses
// whitespace, drops leading connectives and punctuation, capitalizes the
// first letter and ensures terminal punctuation.
func (s *Sanitizer) Sanitize(text string) string {
	out := html.UnescapeString(s.policy.Sanitize(text))

	for _, re := range sourcePhrases {
		out = re.ReplaceAllString(out, phraseReplacement)
	}

	out = strings.Join(strings.Fields(out), " ")
	out = tidySpacing(out)

	for {
		trimmed := leadingPunct.ReplaceAllString(out, "")
		trimmed = leadingConnective.ReplaceAllString(trimmed, "")
		if trimmed == out {
			break
		}
		out = trimmed
	}

	out = strings.TrimSpace(out)
	if out == "" || !hasLetterOrDigit(out) {
		return s.placeholder
	}

	return terminate(capitalize(out))
}

// ClampWords keeps at most max words of text, ending with punctuation.
func ClampWords(text string, max int) string {
	words := strings.Fields(text)
	if max <= 0 || len(words) <= max {
		return text
	}
	clamped := strings.TrimRight(strings.Join(words[:max], " "), ",;:-–— ")
	return terminate(clamped)
}

// tidySpacing removes the space a phrase removal leaves before punctuation.
func tidySpacing(s string) string {
	for _, p := range []string{",", ".", ";", ":", "!", "?"} {
		s = strings.ReplaceAll(s, " "+p, p)
	}
	s = strings.ReplaceAll(s, ",,", ",")
	return strings.ReplaceAll(s, ",.", ".")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func terminate(s string) string {
	s = strings.TrimRight(s, ",;: ")
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', '…':
		return s
	}
	return s + "."
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
