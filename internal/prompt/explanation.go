package prompt

import (
	"fmt"
	"strings"
)

// Explanation builds the narrow prompt used to regenerate one quiz item's
// explanation from its question, options and correct answer.
func (b *Builder) Explanation(question string, options []string, correctIndex int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, b.t.explanation, b.cfg.Subject)
	sb.WriteString("\n\n")

	sb.WriteString(b.t.questionLabel)
	sb.WriteString(" ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n")

	sb.WriteString(b.t.optionsLabel)
	sb.WriteString("\n")
	for i, opt := range options {
		fmt.Fprintf(&sb, "%c. %s\n", 'A'+rune(i), strings.TrimSpace(opt))
	}

	if correctIndex >= 0 && correctIndex < len(options) {
		fmt.Fprintf(&sb, "%s %c. %s\n", b.t.correctLabel, 'A'+rune(correctIndex), strings.TrimSpace(options[correctIndex]))
	}

	return sb.String()
}
