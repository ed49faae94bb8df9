package tutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlexMoto69/uplearn/internal/access"
	"github.com/AlexMoto69/uplearn/internal/extract"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/google/uuid"
)

// QuizKind tells how a quiz was assembled.
type QuizKind string

const (
	QuizModule QuizKind = "module"
	QuizDaily  QuizKind = "daily"
	QuizText   QuizKind = "text"
)

// QuizMeta describes a generated quiz.
type QuizMeta struct {
	ID          string              `json:"id"`
	Kind        QuizKind            `json:"kind"`
	Modules     []progress.ModuleID `json:"modules,omitempty"`
	Count       int                 `json:"count"`
	Model       string              `json:"model"`
	GeneratedAt time.Time           `json:"generated_at"`

	// AlreadyCompletedToday is set on a daily quiz generated on request
	// after today's daily quiz was already passed.
	AlreadyCompletedToday bool `json:"already_completed_today,omitempty"`

	RegeneratedExplanations int `json:"regenerated_explanations,omitempty"`
}

// Quiz is a validated set of multiple-choice items.
type Quiz struct {
	Meta  QuizMeta           `json:"meta"`
	Items []extract.QuizItem `json:"items"`
}

// DailyOptions parameterizes GenerateDailyQuiz.
type DailyOptions struct {
	Selector string
	Count    int

	// Another generates a fresh set even when today's daily quiz is done.
	Another bool
}

// GenerateModuleQuiz builds a quiz over the modules selector picks from
// the learner's allowed set.
func (s *Service) GenerateModuleQuiz(ctx context.Context, userID, selector string, count int) (*Quiz, error) {
	p, err := s.progress.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	modules, err := access.ValidateRequest(selector, access.AllowedModules(p))
	if err != nil {
		return nil, err
	}
	return s.moduleQuiz(llm.WithPurpose(ctx, llm.PurposeModuleQuiz), QuizModule, modules, count)
}

// GenerateDailyQuiz builds the daily review quiz. Once today's daily quiz
// has been passed it returns *progress.ErrDailyAlreadyCompleted without
// contacting the model, unless opts.Another is set.
func (s *Service) GenerateDailyQuiz(ctx context.Context, userID string, opts DailyOptions) (*Quiz, error) {
	p, err := s.progress.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	today := s.today()
	done := p.DailyCompleted(today)
	if done && !opts.Another {
		return nil, &progress.ErrDailyAlreadyCompleted{Progress: p.Summarize(userID, today)}
	}

	modules, err := access.ValidateRequest(opts.Selector, access.AllowedModules(p))
	if err != nil {
		return nil, err
	}

	quiz, err := s.moduleQuiz(llm.WithPurpose(ctx, llm.PurposeDailyQuiz), QuizDaily, modules, opts.Count)
	if err != nil {
		return nil, err
	}
	quiz.Meta.AlreadyCompletedToday = done
	return quiz, nil
}

// GenerateFromText builds a quiz from caller-supplied text instead of
// lesson content. No access check applies.
func (s *Service) GenerateFromText(ctx context.Context, text string, count int) (*Quiz, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ErrEmptyInput{Field: "text"}
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeTextQuiz)
	return s.generate(ctx, QuizText, nil, []string{text}, count)
}

func (s *Service) moduleQuiz(ctx context.Context, kind QuizKind, modules []progress.ModuleID, count int) (*Quiz, error) {
	fetch := func(ctx context.Context, m progress.ModuleID) ([]string, error) {
		return s.retriever.RetrieveContext(ctx, m, s.opts.RetrievalK)
	}
	sections, used, err := s.gatherContext(ctx, modules, fetch)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, kind, used, sections, count)
}

func (s *Service) generate(ctx context.Context, kind QuizKind, modules []progress.ModuleID, passages []string, count int) (*Quiz, error) {
	if count <= 0 {
		count = s.opts.QuizCount
	}

	text := s.prompts.Build(prompt.Input{
		Profile: prompt.ProfileModuleQuiz,
		Context: passages,
		Count:   count,
	})

	raw, err := s.gen.Generate(ctx, text, s.opts.QuizMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate %s quiz: %w", kind, err)
	}

	items, err := extract.Items(raw, count)
	if err != nil {
		return nil, fmt.Errorf("extract %s quiz: %w", kind, err)
	}

	quiz := &Quiz{
		Meta: QuizMeta{
			ID:          uuid.NewString(),
			Kind:        kind,
			Modules:     modules,
			Count:       len(items),
			Model:       s.gen.ModelID(),
			GeneratedAt: s.now().UTC(),
		},
	}

	if s.opts.RegenerateExplanations {
		quiz.Items, quiz.Meta.RegeneratedExplanations = s.regen.Regenerate(ctx, items)
	} else {
		quiz.Items = s.sanitizer.SanitizeItems(items)
	}

	s.logger.Debug("quiz generated",
		"id", quiz.Meta.ID,
		"kind", string(kind),
		"modules", len(modules),
		"items", len(quiz.Items),
		"regenerated", quiz.Meta.RegeneratedExplanations,
	)
	return quiz, nil
}
