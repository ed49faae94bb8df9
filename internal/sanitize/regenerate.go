package sanitize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AlexMoto69/uplearn/internal/extract"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent explanation requests.
const DefaultWorkers = 4

const explanationMaxTokens = 160

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Regenerator rewrites quiz explanations with short model-written ones.
type Regenerator struct {
	gen       Generator
	prompts   *prompt.Builder
	sanitizer *Sanitizer
	workers   int
	logger    *slog.Logger
}

// NewRegenerator creates a Regenerator. workers <= 0 selects DefaultWorkers.
func NewRegenerator(gen Generator, prompts *prompt.Builder, sanitizer *Sanitizer, workers int, logger *slog.Logger) *Regenerator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Regenerator{
		gen:       gen,
		prompts:   prompts,
		sanitizer: sanitizer,
		workers:   workers,
		logger:    logger,
	}
}

// Regenerate returns a copy of items whose explanations were rewritten by
// the model. A failed or empty rewrite keeps the sanitized original. The
// second result counts the explanations that were replaced.
func (r *Regenerator) Regenerate(ctx context.Context, items []extract.QuizItem) ([]extract.QuizItem, int) {
	out := make([]extract.QuizItem, len(items))
	replaced := make([]bool, len(items))
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, item := range items {
		out[i] = item
		out[i].Explanation = r.sanitizer.Sanitize(item.Explanation)

		g.Go(func() error {
			text, err := r.explain(ctx, item)
			if err != nil {
				r.logger.Warn("explanation regeneration failed",
					"question", i, "error", err)
				return nil
			}
			if text == "" {
				return nil
			}
			out[i].Explanation = text
			replaced[i] = true
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range replaced {
		if ok {
			n++
		}
	}
	return out, n
}

func (r *Regenerator) explain(ctx context.Context, item extract.QuizItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := r.prompts.Explanation(item.Question, item.Options, item.CorrectIndex)
	raw, err := r.gen.Generate(ctx, p, explanationMaxTokens)
	if err != nil {
		return "", err
	}
	raw = llm.NormalizeText(raw)
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	text := r.sanitizer.Sanitize(ClampWords(raw, MaxExplanationWords))
	if text == r.sanitizer.Placeholder() {
		return "", nil
	}
	return text, nil
}

// SanitizeItems returns a copy of items with every explanation sanitized.
func (s *Sanitizer) SanitizeItems(items []extract.QuizItem) []extract.QuizItem {
	out := make([]extract.QuizItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Explanation = s.Sanitize(item.Explanation)
	}
	return out
}
