package questions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns a fixed completion.
type scriptedProvider struct {
	output string
	err    error
}

func (s *scriptedProvider) Name() string                                        { return "scripted" }
func (s *scriptedProvider) Generate(_ context.Context, _ string) (string, error) { return s.output, s.err }
func (s *scriptedProvider) Available(_ context.Context) bool                    { return true }

func TestParseQuestions_JSONContract(t *testing.T) {
	output := `{
  "questions": [
    "O consumo de café melhora a memória?",
    "Há estudos científicos sobre isso?"
  ]
}`
	got := ParseQuestions(output)
	assert.Equal(t, []string{
		"O consumo de café melhora a memória?",
		"Há estudos científicos sobre isso?",
	}, got)
}

func TestParseQuestions_JSONWrappedInProse(t *testing.T) {
	output := `Claro! Aqui estão as perguntas:

{"questions": ["Pergunta um?", "Pergunta dois?"]}

Espero que ajude.`
	got := ParseQuestions(output)
	assert.Equal(t, []string{"Pergunta um?", "Pergunta dois?"}, got)
}

func TestParseQuestions_BareJSONArray(t *testing.T) {
	got := ParseQuestions(`["Pergunta um?", "Pergunta dois?"]`)
	assert.Equal(t, []string{"Pergunta um?", "Pergunta dois?"}, got)
}

func TestParseQuestions_LineFallback(t *testing.T) {
	output := `- O café melhora a memória?
• Existem estudos confirmando?
ok
* A cafeína afeta a consolidação?`
	got := ParseQuestions(output)
	assert.Equal(t, []string{
		"O café melhora a memória?",
		"Existem estudos confirmando?",
		"A cafeína afeta a consolidação?",
	}, got)
}

func TestParseQuestions_Empty(t *testing.T) {
	assert.Nil(t, ParseQuestions(""))
	assert.Nil(t, ParseQuestions("   \n  "))
}

func TestGenerate_ReturnsQuestionSet(t *testing.T) {
	gen := NewGenerator(&scriptedProvider{
		output: `{"questions": ["Pergunta um?", "Pergunta dois?", "Pergunta três?"]}`,
	})

	set, err := gen.Generate(context.Background(), "O café melhora a memória.")
	require.NoError(t, err)

	assert.Equal(t, "O café melhora a memória.", set.Claim)
	assert.Len(t, set.Questions, 3)
	assert.False(t, set.Timestamp.IsZero())
}

func TestGenerate_NoUsableQuestionsFails(t *testing.T) {
	gen := NewGenerator(&scriptedProvider{output: "ok"})

	_, err := gen.Generate(context.Background(), "claim qualquer")
	assert.Error(t, err)
}
