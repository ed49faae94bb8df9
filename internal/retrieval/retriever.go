// Package retrieval selects the lesson passages a prompt is grounded on.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTopK is the number of neighbours requested from the index.
	DefaultTopK = 8

	// MaxPassages caps the passages kept per module.
	MaxPassages = 6
)

// ErrModuleTextUnavailable is returned when neither the index nor the
// lesson store has text for a module.
type ErrModuleTextUnavailable struct {
	Module progress.ModuleID
	Err    error
}

func (e *ErrModuleTextUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no text available for module %d: %v", e.Module, e.Err)
	}
	return fmt.Sprintf("no text available for module %d", e.Module)
}

func (e *ErrModuleTextUnavailable) Unwrap() error { return e.Err }

// LessonReader provides the full text of a module.
type LessonReader interface {
	ReadModuleText(ctx context.Context, module progress.ModuleID) (string, error)
}

// Config wires the shared retrieval resources. Index and Embedder may be
// nil, in which case every lookup falls back to the full lesson text.
type Config struct {
	Index    *Index
	Embedder Embedder
	TopK     int
}

// Retriever finds module-scoped passages for a query.
type Retriever struct {
	lessons LessonReader
	logger  *slog.Logger
	topK    int

	mu       sync.RWMutex
	index    *Index
	embedder Embedder
}

// New creates a Retriever.
func New(cfg Config, lessons LessonReader, logger *slog.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		lessons:  lessons,
		logger:   logger,
		topK:     cfg.TopK,
		index:    cfg.Index,
		embedder: cfg.Embedder,
	}
}

// Close releases the index and embedder. Later lookups use lesson text.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = nil
	r.embedder = nil
	return nil
}

// SummaryQuery is the synthetic query used to pick a module's key passages.
func SummaryQuery(module progress.ModuleID) string {
	return fmt.Sprintf("summary of module %d", module)
}

// RetrieveContext returns the passages that summarize a module.
func (r *Retriever) RetrieveContext(ctx context.Context, module progress.ModuleID, k int) ([]string, error) {
	return r.Search(ctx, module, SummaryQuery(module), k)
}

// Search returns up to MaxPassages distinct passages of module nearest to
// query. With no usable hit it returns the whole lesson text as a single
// element.
func (r *Retriever) Search(ctx context.Context, module progress.ModuleID, query string, k int) ([]string, error) {
	if k <= 0 {
		k = r.topK
	}

	if passages := r.nearest(ctx, module, query, k); len(passages) > 0 {
		return passages, nil
	}

	text, err := r.lessons.ReadModuleText(ctx, module)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ErrModuleTextUnavailable{Module: module, Err: err}
	}
	r.logger.Debug("using full lesson text", "module", int(module))
	return []string{text}, nil
}

func (r *Retriever) nearest(ctx context.Context, module progress.ModuleID, query string, k int) []string {
	r.mu.RLock()
	index, embedder := r.index, r.embedder
	r.mu.RUnlock()

	if index == nil || embedder == nil || index.Len() == 0 {
		return nil
	}

	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed", "module", int(module), "error", err)
		return nil
	}

	hits, err := index.Search(vec, k)
	if err != nil {
		r.logger.Warn("index search failed", "module", int(module), "error", err)
		return nil
	}

	seen := make(map[string]struct{}, len(hits))
	var out []string
	for _, h := range hits {
		if h.Module != module {
			continue
		}
		key := dedupeKey(h.Text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h.Text)
		if len(out) == MaxPassages {
			break
		}
	}
	return out
}

// dedupeKey compares passages by NFC-normalized, whitespace-collapsed text.
func dedupeKey(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
