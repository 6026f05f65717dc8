package corpus

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// falseLabels are normalized classifications that count as refuting
// evidence. Brazilian fact-checking agencies use a wide vocabulary for
// "not true".
var falseLabels = map[string]struct{}{
	"falso":               {},
	"fake":                {},
	"enganoso":            {},
	"distorcido":          {},
	"golpe":               {},
	"manipulado":          {},
	"boato":               {},
	"nao e verdade":       {},
	"impreciso":           {},
	"exagerado":           {},
	"insustentavel":       {},
	"sem evidencia":       {},
	"sem contexto":        {},
	"descontextualizado":  {},
	"alterado":            {},
	"nao ha evidencias":   {},
	"nao e bem assim":     {},
	"falso/enganoso":      {},
}

// trueLabels are normalized classifications that count as supporting
// evidence.
var trueLabels = map[string]struct{}{
	"verdadeiro":      {},
	"fato":            {},
	"verdade":         {},
	"correto":         {},
	"real":            {},
	"comprovado":      {},
	"confirmado":      {},
	"ainda e verdade": {},
}

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining marks from text ("é" becomes "e").
// On a transform failure the input is returned unchanged.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeLabel lowercases, trims and accent-strips a classification
// label so that "Falso", "FALSO " and "fálso" all compare equal.
func NormalizeLabel(label string) string {
	if label == "" {
		return ""
	}
	return StripAccents(strings.TrimSpace(strings.ToLower(label)))
}

// IsFalseLabel reports whether a normalized label counts as refuting.
func IsFalseLabel(label string) bool {
	_, ok := falseLabels[NormalizeLabel(label)]
	return ok
}

// IsTrueLabel reports whether a normalized label counts as supporting.
func IsTrueLabel(label string) bool {
	_, ok := trueLabels[NormalizeLabel(label)]
	return ok
}
