package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "falso", "falso"},
		{"acute accent", "fálso", "falso"},
		{"tilde", "não é verdade", "nao e verdade"},
		{"cedilla", "informação", "informacao"},
		{"mixed case preserved", "Verificação", "Verificacao"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripAccents(tt.input))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "falso", NormalizeLabel("  FALSO "))
	assert.Equal(t, "nao e verdade", NormalizeLabel("Não é verdade"))
	assert.Equal(t, "", NormalizeLabel(""))
}

func TestIsFalseLabel(t *testing.T) {
	assert.True(t, IsFalseLabel("falso"))
	assert.True(t, IsFalseLabel("Enganoso"))
	assert.True(t, IsFalseLabel("não é verdade"))
	assert.True(t, IsFalseLabel("falso/enganoso"))
	assert.False(t, IsFalseLabel("verdadeiro"))
	assert.False(t, IsFalseLabel(""))
}

func TestIsTrueLabel(t *testing.T) {
	assert.True(t, IsTrueLabel("verdadeiro"))
	assert.True(t, IsTrueLabel("FATO"))
	assert.True(t, IsTrueLabel("ainda é verdade"))
	assert.False(t, IsTrueLabel("falso"))
	assert.False(t, IsTrueLabel("em apuração"))
}

func TestArticleFullText(t *testing.T) {
	a := Article{Title: "Titulo", Subtitle: "Sub", Text: "Corpo"}
	assert.Equal(t, "Titulo Sub Corpo", a.FullText())

	b := Article{Title: "Titulo", Text: "Corpo"}
	assert.Equal(t, "Titulo Corpo", b.FullText())
}

func TestArticleSnippet(t *testing.T) {
	a := Article{Text: "ação popular"}
	assert.Equal(t, "ação", a.Snippet(4))
	assert.Equal(t, "ação popular", a.Snippet(100))
}
