package corpus

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// Source describes one JSONL dataset on disk.
type Source struct {
	// Name tags every loaded article with its agency.
	Name string

	// File is the path relative to the corpus data directory.
	File string
}

// DefaultSources returns the six Brazilian fact-checking datasets in
// load order.
func DefaultSources() []Source {
	return []Source{
		{Name: "g1", File: filepath.Join("g1", "g1_cleaned.jsonl")},
		{Name: "lupa", File: filepath.Join("lupa", "lupa_cleaned.jsonl")},
		{Name: "aosfatos", File: filepath.Join("aosfatos", "aosfatos_cleaned.jsonl")},
		{Name: "estadao", File: filepath.Join("estadao", "estadao_cleaned.jsonl")},
		{Name: "boatos", File: filepath.Join("boatos_org", "boatos_2020_2025_cleaned.jsonl")},
		{Name: "confere", File: filepath.Join("confere", "confere_cleaned.jsonl")},
	}
}

// maxLineSize bounds a single JSONL record. Some article bodies run to
// hundreds of kilobytes.
const maxLineSize = 4 * 1024 * 1024

// Load reads all sources under dataDir into a unified corpus. Missing
// source files are logged and skipped; malformed lines are logged and
// skipped. Load only fails when no articles could be read at all.
func Load(dataDir string, sources []Source) ([]Article, error) {
	if len(sources) == 0 {
		sources = DefaultSources()
	}

	var articles []Article
	for _, src := range sources {
		loaded, err := loadSource(dataDir, src)
		if err != nil {
			slog.Warn("corpus_source_skipped",
				"source", src.Name,
				"file", src.File,
				"error", err)
			continue
		}
		slog.Info("corpus_source_loaded",
			"source", src.Name,
			"articles", len(loaded))
		articles = append(articles, loaded...)
	}

	if len(articles) == 0 {
		return nil, o4terrors.Newf(o4terrors.ErrCodeCorpusEmpty,
			"no articles loaded from %s", dataDir)
	}

	slog.Info("corpus_loaded",
		"articles", len(articles),
		"sources", len(sources))
	return articles, nil
}

func loadSource(dataDir string, src Source) ([]Article, error) {
	path := filepath.Join(dataDir, src.File)
	f, err := os.Open(path)
	if err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeCorpusSourceMissing,
			"opening corpus source", err)
	}
	defer f.Close()

	var articles []Article
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var a Article
		if err := json.Unmarshal(line, &a); err != nil {
			slog.Debug("corpus_line_invalid",
				"source", src.Name,
				"line", lineNo,
				"error", err)
			continue
		}

		a.Source = src.Name
		a.Label = NormalizeLabel(a.Label)
		if a.Tags == nil {
			a.Tags = []string{}
		}
		articles = append(articles, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeCorpusLineInvalid,
			"scanning corpus source", err)
	}

	return articles, nil
}
