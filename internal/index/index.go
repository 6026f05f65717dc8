package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/embed"
	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// Options configures index construction.
type Options struct {
	// Strategy selects the semantic encoding strategy.
	Strategy Strategy

	// CacheDir enables the on-disk embedding cache when non-empty.
	CacheDir string
}

// Index bundles the lexical and semantic indexes over one corpus
// snapshot. Both are always built so the retrieval method can be chosen
// per query.
type Index struct {
	Articles []corpus.Article
	Lexical  *LexicalIndex
	Semantic *SemanticIndex
}

// Build constructs both indexes for the corpus. The semantic side is
// restored from cache when a matching file exists; mismatched or corrupt
// caches are rebuilt and overwritten. Build returns only when both
// indexes are fully queryable.
func Build(ctx context.Context, articles []corpus.Article, embedder embed.Embedder, opts Options) (*Index, error) {
	if len(articles) == 0 {
		return nil, o4terrors.New(o4terrors.ErrCodeCorpusEmpty, "cannot index an empty corpus")
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyChunkPool
	}

	start := time.Now()
	lexical, err := BuildLexicalIndex(articles)
	if err != nil {
		return nil, err
	}
	slog.Info("lexical_index_built",
		"articles", len(articles),
		"duration", time.Since(start))

	semantic, err := buildOrLoadSemantic(ctx, articles, embedder, opts)
	if err != nil {
		_ = lexical.Close()
		return nil, err
	}

	return &Index{Articles: articles, Lexical: lexical, Semantic: semantic}, nil
}

func buildOrLoadSemantic(ctx context.Context, articles []corpus.Article, embedder embed.Embedder, opts Options) (*SemanticIndex, error) {
	if opts.CacheDir == "" {
		return BuildSemanticIndex(ctx, articles, embedder, opts.Strategy)
	}

	model := embedder.ModelName()
	if s, err := LoadSemanticIndex(opts.CacheDir, model, len(articles), opts.Strategy); err == nil {
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("embedding_cache_rebuild",
			"model", model,
			"strategy", opts.Strategy,
			"error", err)
	}

	var semantic *SemanticIndex
	err := withBuildLock(opts.CacheDir, func() error {
		// Another process may have finished the build while we waited.
		if s, err := LoadSemanticIndex(opts.CacheDir, model, len(articles), opts.Strategy); err == nil {
			semantic = s
			return nil
		}

		start := time.Now()
		s, err := BuildSemanticIndex(ctx, articles, embedder, opts.Strategy)
		if err != nil {
			return err
		}
		slog.Info("semantic_index_built",
			"articles", len(articles),
			"vectors", s.VectorCount(),
			"strategy", opts.Strategy,
			"duration", time.Since(start))

		if err := SaveSemanticIndex(opts.CacheDir, model, s); err != nil {
			// The in-memory index is still usable.
			slog.Warn("embedding_cache_save_failed", "error", err)
		}
		semantic = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return semantic, nil
}

// Close releases index resources.
func (i *Index) Close() error {
	if i.Lexical != nil {
		return i.Lexical.Close()
	}
	return nil
}
