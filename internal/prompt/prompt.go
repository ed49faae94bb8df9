// Package prompt composes model prompts from fixed instruction templates,
// retrieved lesson context, conversation history and the learner's text.
// Everything here is pure string composition.
package prompt

import (
	"fmt"
	"strings"
)

// Delimiters bounding the structured block a quiz response must contain.
const (
	BlockStart = "<<<JSON"
	BlockEnd   = "JSON;"
)

// Profile selects an instruction set.
type Profile int

const (
	// ProfileModuleQuiz asks for exactly Count quiz items inside the
	// delimited block.
	ProfileModuleQuiz Profile = iota

	// ProfileChat asks for a concise free-text answer.
	ProfileChat
)

func (p Profile) String() string {
	switch p {
	case ProfileModuleQuiz:
		return "module-quiz"
	case ProfileChat:
		return "chat"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// Turn is one conversation history entry.
type Turn struct {
	Speaker string `json:"from"`
	Text    string `json:"text"`
}

// Input is everything a single prompt is built from.
type Input struct {
	Profile Profile

	// Context holds lesson passages or module sections, in order.
	Context []string

	// History is the prior conversation, oldest first.
	History []Turn

	// UserText is the learner's question (chat) or an optional extra
	// requirement appended to the quiz directive.
	UserText string

	// Count is the number of quiz items to request. Ignored for chat.
	Count int
}

// Config controls the fixed parts of every prompt.
type Config struct {
	// Language selects the template set: "ro" or "en".
	Language string

	// Subject names the curriculum subject ("biologie").
	Subject string

	// Refusal is the fixed refusal pattern; it must contain the subject
	// placeholder ("[Subiect]" or "[Subject]").
	Refusal string

	// RefusalExample shows the pattern filled in.
	RefusalExample string

	// HistoryTurns is how many of the most recent turns are kept.
	HistoryTurns int

	// DefaultCount is used when Input.Count is not positive.
	DefaultCount int
}

// DefaultConfig returns the Romanian biology configuration.
func DefaultConfig() Config {
	return Config{
		Language:       "ro",
		Subject:        "biologie",
		Refusal:        defaultRefusals["ro"][0],
		RefusalExample: defaultRefusals["ro"][1],
		HistoryTurns:   6,
		DefaultCount:   5,
	}
}

// Builder renders prompts for one configuration.
type Builder struct {
	cfg Config
	t   templates
}

// New creates a Builder. Unset fields fall back to the defaults for the
// chosen language.
func New(cfg Config) *Builder {
	def := DefaultConfig()
	t := romanian
	lang := strings.ToLower(cfg.Language)
	if lang == "en" {
		t = english
	} else {
		lang = "ro"
	}
	cfg.Language = lang

	if cfg.Subject == "" {
		cfg.Subject = def.Subject
		if lang == "en" {
			cfg.Subject = "biology"
		}
	}
	if cfg.Refusal == "" {
		cfg.Refusal = defaultRefusals[lang][0]
	}
	if cfg.RefusalExample == "" {
		cfg.RefusalExample = defaultRefusals[lang][1]
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = def.HistoryTurns
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = def.DefaultCount
	}
	return &Builder{cfg: cfg, t: t}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build renders the prompt for in.
func (b *Builder) Build(in Input) string {
	switch in.Profile {
	case ProfileChat:
		return b.buildChat(in)
	default:
		return b.buildQuiz(in)
	}
}

func (b *Builder) buildQuiz(in Input) string {
	count := in.Count
	if count <= 0 {
		count = b.cfg.DefaultCount
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, b.t.quizHeader, b.cfg.Subject, count)
	sb.WriteString("\n\n")

	writeRules(&sb, append(append([]string{}, b.t.quizRules...), b.refusalRule()))
	sb.WriteString("\n")

	sb.WriteString(b.t.quizFormat)
	sb.WriteString("\n\n")
	sb.WriteString(BlockStart)
	sb.WriteString("\n")
	sb.WriteString(exampleItems(count))
	sb.WriteString("\n")
	sb.WriteString(BlockEnd)
	sb.WriteString("\n")

	if ctx := joinContext(in.Context); ctx != "" {
		sb.WriteString("\n")
		sb.WriteString(b.t.contextLabel)
		sb.WriteString("\n")
		sb.WriteString(ctx)
		sb.WriteString("\n")
	}

	if h := b.renderHistory(in.History); h != "" {
		sb.WriteString("\n")
		sb.WriteString(h)
		sb.WriteString("\n")
	}

	if extra := strings.TrimSpace(in.UserText); extra != "" {
		sb.WriteString("\n")
		sb.WriteString(b.t.quizExtra)
		sb.WriteString("\n")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (b *Builder) buildChat(in Input) string {
	var parts []string

	var head strings.Builder
	fmt.Fprintf(&head, b.t.chatHeader, b.cfg.Subject)
	head.WriteString("\n")
	writeRules(&head, append(append([]string{}, b.t.chatRules...), b.refusalRule()))
	parts = append(parts, strings.TrimSpace(head.String()))

	if ctx := joinContext(in.Context); ctx != "" {
		parts = append(parts, b.t.contextLabel+"\n"+ctx)
	}

	if h := b.renderHistory(in.History); h != "" {
		parts = append(parts, h)
	}

	parts = append(parts, b.t.chatAsk+"\n"+strings.TrimSpace(in.UserText))
	parts = append(parts, b.t.chatAnswer)

	return strings.Join(parts, "\n\n")
}

func (b *Builder) refusalRule() string {
	return fmt.Sprintf(b.t.refusalRule, b.cfg.Refusal, b.cfg.RefusalExample)
}

// renderHistory keeps the most recent HistoryTurns entries as
// "speaker: text" lines under the history label.
func (b *Builder) renderHistory(history []Turn) string {
	turns := TrimHistory(history, b.cfg.HistoryTurns)
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns)+1)
	lines = append(lines, b.t.historyLabel)
	for _, t := range turns {
		who := strings.TrimSpace(t.Speaker)
		if who == "" {
			who = "user"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, strings.TrimSpace(t.Text)))
	}
	return strings.Join(lines, "\n")
}

// TrimHistory returns the last n turns of history.
func TrimHistory(history []Turn, n int) []Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func writeRules(sb *strings.Builder, rules []string) {
	for _, r := range rules {
		sb.WriteString("- ")
		sb.WriteString(r)
		sb.WriteString("\n")
	}
}

func joinContext(passages []string) string {
	var kept []string
	for _, p := range passages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

func exampleItems(count int) string {
	item := `{"question": "...", "options": ["...", "...", "..."], "correct_index": 0, "explanation": "...", "source_sentence": 1}`
	if count == 1 {
		return "[" + item + "]"
	}
	return fmt.Sprintf("[%s, ... %d items ...]", item, count)
}
