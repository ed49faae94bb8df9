package retrieval

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/AlexMoto69/uplearn/internal/progress"
)

// Passage is one indexed chunk of lesson text.
type Passage struct {
	Module    progress.ModuleID `json:"module"`
	ChunkID   int               `json:"chunk_id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
}

// Hit is a passage returned by a nearest-neighbour search.
type Hit struct {
	Passage
	Score float32
}

type indexFile struct {
	Model    string    `json:"model"`
	Passages []Passage `json:"passages"`
}

// Index is an in-memory vector index with inner-product search over
// unit-length vectors, which ranks by cosine similarity.
type Index struct {
	model    string
	dim      int
	passages []Passage
}

// LoadIndex reads a precomputed index file.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}

	ix, err := NewIndex(f.Passages)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	ix.model = f.Model
	return ix, nil
}

// NewIndex builds an index from passages. All embeddings must share one
// dimension; vectors are normalized to unit length.
func NewIndex(passages []Passage) (*Index, error) {
	ix := &Index{passages: make([]Passage, 0, len(passages))}
	for i, p := range passages {
		if len(p.Embedding) == 0 {
			return nil, fmt.Errorf("passage %d has no embedding", i)
		}
		if ix.dim == 0 {
			ix.dim = len(p.Embedding)
		} else if len(p.Embedding) != ix.dim {
			return nil, fmt.Errorf("passage %d has dimension %d, want %d", i, len(p.Embedding), ix.dim)
		}
		p.Embedding = normalize(p.Embedding)
		ix.passages = append(ix.passages, p)
	}
	return ix, nil
}

// Len returns the number of indexed passages.
func (ix *Index) Len() int { return len(ix.passages) }

// Dim returns the embedding dimension, 0 for an empty index.
func (ix *Index) Dim() int { return ix.dim }

// Model names the embedding model recorded in the index file, if any.
func (ix *Index) Model() string { return ix.model }

// Search returns the k passages closest to vec, best first.
func (ix *Index) Search(vec []float32, k int) ([]Hit, error) {
	if k <= 0 || len(ix.passages) == 0 {
		return nil, nil
	}
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(vec), ix.dim)
	}

	q := normalize(vec)
	hits := make([]Hit, len(ix.passages))
	for i, p := range ix.passages {
		hits[i] = Hit{Passage: p, Score: dot(q, p.Embedding)}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits[:min(k, len(hits))], nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
