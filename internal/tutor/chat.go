package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexMoto69/uplearn/internal/access"
	"github.com/AlexMoto69/uplearn/internal/extract"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/prompt"
)

// AnswerQuestion answers a free-form question grounded in the learner's
// allowed modules. Only the most recent MaxContextChars characters of the
// combined context are sent.
func (s *Service) AnswerQuestion(ctx context.Context, userID, question, selector string, history []prompt.Turn) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &ErrEmptyInput{Field: "question"}
	}

	p, err := s.progress.Load(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load progress: %w", err)
	}
	modules, err := access.ValidateRequest(selector, access.AllowedModules(p))
	if err != nil {
		return "", err
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeChat)

	fetch := func(ctx context.Context, m progress.ModuleID) ([]string, error) {
		return s.retriever.Search(ctx, m, question, s.opts.RetrievalK)
	}
	sections, _, err := s.gatherContext(ctx, modules, fetch)
	if err != nil {
		return "", err
	}

	text := s.prompts.Build(prompt.Input{
		Profile:  prompt.ProfileChat,
		Context:  []string{tail(strings.Join(sections, "\n\n"), s.opts.MaxContextChars)},
		History:  history,
		UserText: question,
	})

	raw, err := s.gen.Generate(ctx, text, s.opts.ChatMaxTokens)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return extract.Reply(raw)
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
