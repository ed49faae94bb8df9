package sanitize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/AlexMoto69/uplearn/internal/extract"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	s := New("ro")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Mitocondria produce energie.", "Mitocondria produce energie."},
		{"adds period", "mitocondria produce energie", "Mitocondria produce energie."},
		{"strips markup", "<b>Nucleul</b> conține ADN", "Nucleul conține ADN."},
		{"unescapes entities", "Celula &amp; țesutul", "Celula & țesutul."},
		{"source phrase at start", "Conform textului, celula are nucleu.", "Celula are nucleu."},
		{"source phrase mid", "Mitocondria, conform lecției, produce energie.", "Mitocondria, produce energie."},
		{"text says", "Textul spune că ribozomii sintetizează proteine", "Ribozomii sintetizează proteine."},
		{"source phrase at end", "Celula are nucleu, conform textului.", "Celula are nucleu."},
		{"text says that with colon", "Textul spune că: plantele produc oxigen", "Plantele produc oxigen."},
		{"ca starting a word", "Textul spune cateva lucruri despre celule", "Cateva lucruri despre celule."},
		{"phrase inside word", "Acasa cum se spune in text ramane", "Acasa cum se spune in text ramane."},
		{"longer word after phrase", "Conform textuluiX, nimic", "Conform textuluiX, nimic."},
		{"connective", "Deci, fotosinteza are loc în cloroplaste.", "Fotosinteza are loc în cloroplaste."},
		{"stacked connectives", "Astfel, prin urmare ADN-ul este dublu catenar", "ADN-ul este dublu catenar."},
		{"connective prefix of word", "Deciziile celulei sunt reglate.", "Deciziile celulei sunt reglate."},
		{"collapses whitespace", "  Membrana   este\n semipermeabilă ", "Membrana este semipermeabilă."},
		{"trailing comma", "Enzimele sunt catalizatori,", "Enzimele sunt catalizatori."},
		{"keeps question mark", "De ce?", "De ce?"},
		{"empty", "", "Aceasta este varianta corectă."},
		{"only phrase", "Conform textului.", "Aceasta este varianta corectă."},
		{"english", "According to the text, cells divide.", "Cells divide."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.in))
		})
	}
}

func TestSanitize_EnglishPlaceholder(t *testing.T) {
	s := New("en")
	assert.Equal(t, "This is the correct answer.", s.Sanitize("   "))
	assert.Equal(t, "Cells divide.", s.Sanitize("The lesson states that cells divide"))
}

func TestSanitize_Idempotent(t *testing.T) {
	s := New("ro")
	inputs := []string{
		"Conform textului, celula are nucleu",
		"<i>deci</i> ADN-ul se replică",
		"",
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		assert.Equal(t, once, s.Sanitize(once), "input %q", in)
	}
}

func TestClampWords(t *testing.T) {
	long := strings.Repeat("cuvânt ", 40)
	got := ClampWords(long, MaxExplanationWords)
	assert.Len(t, strings.Fields(got), MaxExplanationWords)
	assert.True(t, strings.HasSuffix(got, "."))

	assert.Equal(t, "scurt", ClampWords("scurt", MaxExplanationWords))
}

type fakeGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	fail    map[string]bool
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, p string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if llm.PurposeFrom(ctx) != llm.PurposeExplanation {
		return "", errors.New("wrong purpose")
	}
	for q, a := range f.answers {
		if strings.Contains(p, q) {
			if f.fail[q] {
				return "", &llm.ErrProviderUnavailable{Err: errors.New("down")}
			}
			return a, nil
		}
	}
	return "", nil
}

func testItems() []extract.QuizItem {
	opts := []string{"A", "B", "C"}
	return []extract.QuizItem{
		{Question: "Ce produce mitocondria?", Options: opts, CorrectIndex: 0, Explanation: "conform textului, energie"},
		{Question: "Unde are loc fotosinteza?", Options: opts, CorrectIndex: 1, Explanation: "în cloroplaste"},
		{Question: "Ce conține nucleul?", Options: opts, CorrectIndex: 2, Explanation: "ADN"},
	}
}

func TestRegenerate(t *testing.T) {
	gen := &fakeGenerator{
		answers: map[string]string{
			"Ce produce mitocondria?":   "mitocondria produce ATP prin respirație celulară",
			"Unde are loc fotosinteza?": "ignored",
			"Ce conține nucleul?":       "",
		},
		fail: map[string]bool{"Unde are loc fotosinteza?": true},
	}
	r := NewRegenerator(gen, prompt.New(prompt.DefaultConfig()), New("ro"), 2, nil)

	items := testItems()
	out, replaced := r.Regenerate(context.Background(), items)

	require.Len(t, out, 3)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, "Mitocondria produce ATP prin respirație celulară.", out[0].Explanation)
	assert.Equal(t, "În cloroplaste.", out[1].Explanation)
	assert.Equal(t, "ADN.", out[2].Explanation)

	assert.Len(t, gen.prompts, 3)
	// input slice is left untouched
	assert.Equal(t, "ADN", items[2].Explanation)
	assert.Equal(t, items[0].Question, out[0].Question)
	assert.Equal(t, items[0].Options, out[0].Options)
}

func TestRegenerate_ClampsLongAnswers(t *testing.T) {
	gen := &fakeGenerator{
		answers: map[string]string{"Ce conține nucleul?": strings.Repeat("nucleul conține ADN ", 20)},
	}
	r := NewRegenerator(gen, prompt.New(prompt.DefaultConfig()), New("ro"), 0, nil)

	out, replaced := r.Regenerate(context.Background(), testItems()[2:])
	require.Len(t, out, 1)
	assert.Equal(t, 1, replaced)
	assert.LessOrEqual(t, len(strings.Fields(out[0].Explanation)), MaxExplanationWords)
}

func TestRegenerate_CanceledContextKeepsOriginals(t *testing.T) {
	gen := &fakeGenerator{answers: map[string]string{"Ce conține nucleul?": "altceva"}}
	r := NewRegenerator(gen, prompt.New(prompt.DefaultConfig()), New("ro"), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, replaced := r.Regenerate(ctx, testItems())
	assert.Equal(t, 0, replaced)
	assert.Equal(t, "ADN.", out[2].Explanation)
	assert.Empty(t, gen.prompts)
}
