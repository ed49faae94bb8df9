package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ModuleQuizContract(t *testing.T) {
	b := New(DefaultConfig())
	out := b.Build(Input{
		Profile: ProfileModuleQuiz,
		Context: []string{"Celula este unitatea de bază a vieții.", "  ", "Mitocondria produce energie."},
		Count:   7,
	})

	assert.Contains(t, out, "EXACT 7 întrebări")
	assert.Contains(t, out, "EXACT 3 variante")
	assert.Contains(t, out, "numerotată de la 0")
	assert.Contains(t, out, "... 7 items ...")

	start := strings.Index(out, BlockStart)
	end := strings.Index(out, BlockEnd)
	require.True(t, start >= 0 && end > start, "delimited example block missing")

	for _, field := range []string{`"question"`, `"options"`, `"correct_index"`, `"explanation"`, `"source_sentence"`} {
		assert.Contains(t, out[start:end], field)
	}

	assert.Contains(t, out, "Celula este unitatea de bază a vieții.\n\nMitocondria produce energie.")
	assert.Contains(t, out, "[Subiect] este un proces/concept biologic complex")
	assert.Contains(t, out, "Fotosinteza este")
}

func TestBuild_ModuleQuizDefaultCountAndExtra(t *testing.T) {
	b := New(Config{})
	out := b.Build(Input{Profile: ProfileModuleQuiz, UserText: "Doar despre ADN."})

	assert.Contains(t, out, "EXACT 5 întrebări")
	assert.True(t, strings.HasSuffix(out, "CERINȚĂ SUPLIMENTARĂ:\nDoar despre ADN.\n"))
	assert.NotContains(t, out, "CONTEXT LECȚIE:")
}

func TestBuild_SingleItemExample(t *testing.T) {
	out := New(DefaultConfig()).Build(Input{Profile: ProfileModuleQuiz, Count: 1})
	assert.NotContains(t, out, "items ...")
}

func TestBuild_ChatProfile(t *testing.T) {
	b := New(DefaultConfig())
	out := b.Build(Input{
		Profile:  ProfileChat,
		Context:  []string{"--- Modul 1 ---\nCelula."},
		UserText: "  Ce este celula? ",
	})

	assert.True(t, strings.HasPrefix(out, "Ești un asistent virtual specializat în biologie"))
	assert.Contains(t, out, "CONTEXT LECȚIE:\n--- Modul 1 ---\nCelula.")
	assert.Contains(t, out, "ÎNTREBAREA UTILIZATORULUI:\nCe este celula?")
	assert.Contains(t, out, "[Subiect] este un proces/concept biologic complex")
	assert.NotContains(t, out, BlockStart)
	assert.True(t, strings.HasSuffix(out, "RĂSPUNDE ÎN LIMBA ROMÂNĂ, RĂSPUNS CONCIS:"))
	assert.NotContains(t, out, "Istoric conversație:")
}

func TestBuild_HistoryKeepsLastSixTurns(t *testing.T) {
	var history []Turn
	for i := 1; i <= 9; i++ {
		speaker := "user"
		if i%2 == 0 {
			speaker = "bot"
		}
		history = append(history, Turn{Speaker: speaker, Text: fmt.Sprintf("mesaj %d", i)})
	}
	history[8].Speaker = ""

	out := New(DefaultConfig()).Build(Input{Profile: ProfileChat, History: history, UserText: "q"})

	assert.NotContains(t, out, "mesaj 3\n")
	assert.Contains(t, out, "Istoric conversație:\nbot: mesaj 4\nuser: mesaj 5\nbot: mesaj 6\nuser: mesaj 7\nbot: mesaj 8\nuser: mesaj 9")
}

func TestTrimHistory(t *testing.T) {
	h := []Turn{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	assert.Len(t, TrimHistory(h, 2), 2)
	assert.Equal(t, "b", TrimHistory(h, 2)[0].Text)
	assert.Len(t, TrimHistory(h, 6), 3)
	assert.Nil(t, TrimHistory(nil, 6))
}

func TestBuild_English(t *testing.T) {
	b := New(Config{Language: "EN"})
	assert.Equal(t, "biology", b.Config().Subject)

	out := b.Build(Input{Profile: ProfileModuleQuiz, Count: 3})
	assert.Contains(t, out, "GENERATE EXACTLY 3 questions")
	assert.Contains(t, out, "[Subject] is a complex biological process/concept")
}

func TestExplanation(t *testing.T) {
	out := New(DefaultConfig()).Explanation("Ce produce mitocondria?", []string{"Energie", " Proteine ", "Lipide"}, 1)

	assert.Contains(t, out, "maximum 35 de cuvinte")
	assert.Contains(t, out, "Întrebare: Ce produce mitocondria?\n")
	assert.Contains(t, out, "A. Energie\nB. Proteine\nC. Lipide\n")
	assert.Contains(t, out, "Răspuns corect: B. Proteine\n")
}

func TestExplanation_OutOfRangeIndexOmitsAnswer(t *testing.T) {
	out := New(DefaultConfig()).Explanation("Q", []string{"a", "b", "c"}, 5)
	assert.NotContains(t, out, "Răspuns corect:")
}

func TestProfileString(t *testing.T) {
	assert.Equal(t, "module-quiz", ProfileModuleQuiz.String())
	assert.Equal(t, "chat", ProfileChat.String())
	assert.Equal(t, "profile(9)", Profile(9).String())
}
