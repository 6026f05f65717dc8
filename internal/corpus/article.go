// Package corpus loads and models the fact-checking article collection.
package corpus

import "strings"

// Article is a single fact-checking article from one of the corpus sources.
type Article struct {
	// URL uniquely identifies the article and is the dedup key across
	// retrieval results.
	URL string `json:"url"`

	// Title is the article headline.
	Title string `json:"titulo"`

	// Subtitle is the optional subheadline.
	Subtitle string `json:"subtitulo,omitempty"`

	// Text is the article body.
	Text string `json:"texto"`

	// Label is the original fact-check classification, as published
	// (e.g. "falso", "verdadeiro", "enganoso").
	Label string `json:"classificacao"`

	// Source names the agency the article came from (g1, lupa, ...).
	Source string `json:"source,omitempty"`

	// PublishedAt is the publication date string as found in the source.
	PublishedAt string `json:"data_publicacao,omitempty"`

	// Tags are free-form topic tags.
	Tags []string `json:"tags,omitempty"`
}

// FullText returns the text used for indexing: title, subtitle and body
// joined by spaces, skipping empty parts.
func (a *Article) FullText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Title, a.Subtitle, a.Text} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Snippet returns the first n runes of the article body.
func (a *Article) Snippet(n int) string {
	runes := []rune(a.Text)
	if len(runes) <= n {
		return a.Text
	}
	return string(runes[:n])
}
