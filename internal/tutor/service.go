// Package tutor composes module gating, retrieval, prompting, the model
// gateway, extraction and the progression engine into the operations the
// CLI and any other front end call.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/AlexMoto69/uplearn/internal/retrieval"
	"github.com/AlexMoto69/uplearn/internal/sanitize"
	"golang.org/x/sync/errgroup"
)

// Generator is the model gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	ModelID() string
}

// ContextRetriever finds lesson passages for a module.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, module progress.ModuleID, k int) ([]string, error)
	Search(ctx context.Context, module progress.ModuleID, query string, k int) ([]string, error)
}

// ProgressStore loads and atomically updates progression records.
type ProgressStore interface {
	Load(ctx context.Context, userID string) (progress.UserProgress, error)
	Update(ctx context.Context, userID string, fn func(progress.UserProgress) (progress.UserProgress, error)) (progress.UserProgress, error)
}

// Options tunes the service.
type Options struct {
	QuizCount              int
	QuizMaxTokens          int
	ChatMaxTokens          int
	MaxContextChars        int
	RetrievalK             int
	Workers                int
	RegenerateExplanations bool
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		QuizCount:       5,
		QuizMaxTokens:   2048,
		ChatMaxTokens:   512,
		MaxContextChars: 12000,
		RetrievalK:      retrieval.DefaultTopK,
		Workers:         sanitize.DefaultWorkers,
	}
}

// Deps are the collaborators of a Service.
type Deps struct {
	Generator Generator
	Retriever ContextRetriever
	Progress  ProgressStore
	Prompts   *prompt.Builder
	Logger    *slog.Logger

	// Now supplies the current time; defaults to time.Now.
	Now func() time.Time
}

// Service implements the quiz, chat and progression operations.
type Service struct {
	gen       Generator
	retriever ContextRetriever
	progress  ProgressStore
	prompts   *prompt.Builder
	sanitizer *sanitize.Sanitizer
	regen     *sanitize.Regenerator
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Service. Zero option fields take their defaults.
func New(deps Deps, opts Options) *Service {
	def := DefaultOptions()
	if opts.QuizCount <= 0 {
		opts.QuizCount = def.QuizCount
	}
	if opts.QuizMaxTokens <= 0 {
		opts.QuizMaxTokens = def.QuizMaxTokens
	}
	if opts.ChatMaxTokens <= 0 {
		opts.ChatMaxTokens = def.ChatMaxTokens
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = def.MaxContextChars
	}
	if opts.RetrievalK <= 0 {
		opts.RetrievalK = def.RetrievalK
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}

	if deps.Prompts == nil {
		deps.Prompts = prompt.New(prompt.DefaultConfig())
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	sanitizer := sanitize.New(deps.Prompts.Config().Language)
	return &Service{
		gen:       deps.Generator,
		retriever: deps.Retriever,
		progress:  deps.Progress,
		prompts:   deps.Prompts,
		sanitizer: sanitizer,
		regen:     sanitize.NewRegenerator(deps.Generator, deps.Prompts, sanitizer, opts.Workers, deps.Logger),
		opts:      opts,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

func (s *Service) today() time.Time {
	return progress.Day(s.now())
}

// GetProgress returns the learner's progression as of today.
func (s *Service) GetProgress(ctx context.Context, userID string) (progress.Summary, error) {
	p, err := s.progress.Load(ctx, userID)
	if err != nil {
		return progress.Summary{}, fmt.Errorf("load progress: %w", err)
	}
	return p.Summarize(userID, s.today()), nil
}

type fetchFunc func(ctx context.Context, module progress.ModuleID) ([]string, error)

// gatherContext fetches every module's passages in parallel and renders
// one section per module, in module order. Modules without text are
// skipped; if none has text the first such error is returned.
func (s *Service) gatherContext(ctx context.Context, modules []progress.ModuleID, fetch fetchFunc) ([]string, []progress.ModuleID, error) {
	passages := make([][]string, len(modules))
	missing := make([]error, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, m := range modules {
		g.Go(func() error {
			p, err := fetch(gctx, m)
			if err != nil {
				var unavailable *retrieval.ErrModuleTextUnavailable
				if errors.As(err, &unavailable) {
					missing[i] = err
					return nil
				}
				return fmt.Errorf("retrieve module %d: %w", m, err)
			}
			passages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		sections []string
		used     []progress.ModuleID
		firstErr error
	)
	for i, m := range modules {
		if missing[i] != nil {
			s.logger.Warn("module text unavailable", "module", int(m), "error", missing[i])
			if firstErr == nil {
				firstErr = missing[i]
			}
			continue
		}
		sections = append(sections, s.moduleHeader(m)+"\n"+strings.Join(passages[i], "\n\n"))
		used = append(used, m)
	}
	if len(sections) == 0 {
		return nil, nil, firstErr
	}
	return sections, used, nil
}

func (s *Service) moduleHeader(m progress.ModuleID) string {
	if s.prompts.Config().Language == "en" {
		return fmt.Sprintf("--- Module %d ---", m)
	}
	return fmt.Sprintf("--- Modul %d ---", m)
}
