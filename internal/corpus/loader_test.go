package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

func writeSource(t *testing.T, dir, relPath, content string) {
	t.Helper()
	path := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_SingleSource(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "g1/g1_cleaned.jsonl",
		`{"url":"https://g1.example/a","titulo":"Titulo A","texto":"Corpo A","classificacao":"FALSO"}
{"url":"https://g1.example/b","titulo":"Titulo B","texto":"Corpo B","classificacao":"Verdadeiro"}
`)

	articles, err := Load(dir, []Source{{Name: "g1", File: filepath.Join("g1", "g1_cleaned.jsonl")}})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "g1", articles[0].Source)
	assert.Equal(t, "falso", articles[0].Label)
	assert.Equal(t, "verdadeiro", articles[1].Label)
	assert.NotNil(t, articles[0].Tags)
}

func TestLoad_SkipsMalformedLinesAndBlanks(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "lupa/lupa_cleaned.jsonl",
		`{"url":"https://lupa.example/a","titulo":"Ok","texto":"x","classificacao":"falso"}

not json at all
{"url":"https://lupa.example/b","titulo":"Ok2","texto":"y","classificacao":"fato"}
`)

	articles, err := Load(dir, []Source{{Name: "lupa", File: filepath.Join("lupa", "lupa_cleaned.jsonl")}})
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestLoad_MissingSourceSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "g1/g1_cleaned.jsonl",
		`{"url":"https://g1.example/a","titulo":"A","texto":"x","classificacao":"falso"}
`)

	sources := []Source{
		{Name: "g1", File: filepath.Join("g1", "g1_cleaned.jsonl")},
		{Name: "lupa", File: filepath.Join("lupa", "lupa_cleaned.jsonl")},
	}
	articles, err := Load(dir, sources)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestLoad_EmptyCorpusFails(t *testing.T) {
	_, err := Load(t.TempDir(), []Source{{Name: "g1", File: "missing.jsonl"}})
	require.Error(t, err)
	assert.True(t, o4terrors.IsCode(err, o4terrors.ErrCodeCorpusEmpty))
}

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources()
	require.Len(t, sources, 6)
	assert.Equal(t, "g1", sources[0].Name)
	assert.Equal(t, "confere", sources[5].Name)
}
