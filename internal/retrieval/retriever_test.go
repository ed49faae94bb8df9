package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	return f.vec, f.err
}

type fakeLessons map[progress.ModuleID]string

func (f fakeLessons) ReadModuleText(_ context.Context, module progress.ModuleID) (string, error) {
	text, ok := f[module]
	if !ok {
		return "", errors.New("missing")
	}
	return text, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex([]Passage{
		{Module: 1, ChunkID: 0, Text: "Celula are membrană.", Embedding: []float32{1, 0}},
		{Module: 1, ChunkID: 1, Text: "Celula  are membrană.", Embedding: []float32{0.9, 0.1}},
		{Module: 2, ChunkID: 0, Text: "Fotosinteza are loc în cloroplaste.", Embedding: []float32{0.95, 0.05}},
		{Module: 1, ChunkID: 2, Text: "Nucleul conține ADN.", Embedding: []float32{0.5, 0.5}},
		{Module: 1, ChunkID: 3, Text: "Ribozomii fac proteine.", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
	return ix
}

func TestIndexSearch_RanksByCosine(t *testing.T) {
	ix := testIndex(t)
	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, 2, ix.Dim())

	hits, err := ix.Search([]float32{2, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "Celula are membrană.", hits[0].Text)
	assert.Equal(t, progress.ModuleID(2), hits[1].Module)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	_, err = ix.Search([]float32{1, 0, 0}, 3)
	assert.Error(t, err)
}

func TestNewIndex_DimensionMismatch(t *testing.T) {
	_, err := NewIndex([]Passage{
		{Module: 1, Text: "a", Embedding: []float32{1, 0}},
		{Module: 1, Text: "b", Embedding: []float32{1}},
	})
	assert.Error(t, err)
}

func TestLoadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `{"model":"nomic-embed-text","passages":[
		{"module":3,"chunk_id":0,"text":"Genetica.","embedding":[0.3,0.4]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	ix, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", ix.Model())
	assert.Equal(t, 1, ix.Len())

	hits, err := ix.Search([]float32{3, 4}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	_, err = LoadIndex(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRetrieveContext_FiltersAndDedupes(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	r := New(Config{Index: testIndex(t), Embedder: emb}, fakeLessons{}, discardLogger())

	got, err := r.RetrieveContext(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Celula are membrană.",
		"Nucleul conține ADN.",
		"Ribozomii fac proteine.",
	}, got)
	assert.Equal(t, []string{"summary of module 1"}, emb.calls)
}

func TestRetrieveContext_CapsPassages(t *testing.T) {
	var passages []Passage
	for i := range 10 {
		passages = append(passages, Passage{
			Module:    5,
			ChunkID:   i,
			Text:      string(rune('a'+i)) + " pasaj",
			Embedding: []float32{1, float32(i) / 10},
		})
	}
	ix, err := NewIndex(passages)
	require.NoError(t, err)

	r := New(Config{Index: ix, Embedder: &fakeEmbedder{vec: []float32{1, 0}}, TopK: 10}, fakeLessons{}, discardLogger())
	got, err := r.RetrieveContext(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Len(t, got, MaxPassages)
}

func TestRetrieveContext_FallsBackToLessonText(t *testing.T) {
	lessons := fakeLessons{2: "Textul complet al modulului 2.", 9: "Modulul 9."}

	tests := []struct {
		name   string
		cfg    Config
		module progress.ModuleID
	}{
		{"no index", Config{Embedder: &fakeEmbedder{vec: []float32{1, 0}}}, 2},
		{"no embedder", Config{Index: testIndex(t)}, 2},
		{"embedder fails", Config{Index: testIndex(t), Embedder: &fakeEmbedder{err: errors.New("boom")}}, 2},
		{"no hit for module", Config{Index: testIndex(t), Embedder: &fakeEmbedder{vec: []float32{1, 0}}}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.cfg, lessons, discardLogger())
			got, err := r.RetrieveContext(context.Background(), tt.module, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{lessons[tt.module]}, got)
		})
	}
}

func TestRetrieveContext_Unavailable(t *testing.T) {
	r := New(Config{}, fakeLessons{}, discardLogger())
	_, err := r.RetrieveContext(context.Background(), 7, 0)

	var unavailable *ErrModuleTextUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, progress.ModuleID(7), unavailable.Module)
}

func TestSearch_UsesQueryAndClose(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{0, 1}}
	r := New(Config{Index: testIndex(t), Embedder: emb}, fakeLessons{1: "Tot modulul 1."}, discardLogger())

	got, err := r.Search(context.Background(), 1, "ce fac ribozomii?", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ribozomii fac proteine."}, got)
	assert.Equal(t, []string{"ce fac ribozomii?"}, emb.calls)

	require.NoError(t, r.Close())
	got, err = r.Search(context.Background(), 1, "ce fac ribozomii?", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tot modulul 1."}, got)
}

func TestDedupeKey(t *testing.T) {
	// "ă" precomposed vs. "a" + combining breve.
	assert.Equal(t, dedupeKey("celul\u0103 vie"), dedupeKey("celula\u0306  vie"))
	assert.Equal(t, "", dedupeKey("   "))
}
