package index

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// cacheFileVersion guards the gob layout.
const cacheFileVersion = 1

// cachedEmbeddings is the on-disk layout of a semantic index.
type cachedEmbeddings struct {
	Version  int
	Model    string
	Strategy string

	// Articles is the corpus size the vectors were built for.
	Articles int

	Vectors [][]float32
	Ranges  []ChunkRange
}

// cacheFileName builds the cache key from model, corpus size and
// strategy. Any of those changing invalidates the cache.
func cacheFileName(model string, articles int, strategy Strategy) string {
	safeModel := strings.ReplaceAll(model, "/", "_")
	safeModel = strings.ReplaceAll(safeModel, string(os.PathSeparator), "_")
	return fmt.Sprintf("embeddings_%s_%d_%s.gob", safeModel, articles, strategy)
}

// CachePath returns the cache file path for a model, corpus size and
// strategy combination.
func CachePath(cacheDir, model string, articles int, strategy Strategy) string {
	return filepath.Join(cacheDir, cacheFileName(model, articles, strategy))
}

// LoadSemanticIndex restores a semantic index from the cache directory.
// A missing file returns os.ErrNotExist; a file built for a different
// model, corpus size or strategy returns a cache-mismatch error and the
// caller should rebuild.
func LoadSemanticIndex(cacheDir, model string, articles int, strategy Strategy) (*SemanticIndex, error) {
	path := filepath.Join(cacheDir, cacheFileName(model, articles, strategy))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cached cachedEmbeddings
	if err := gob.NewDecoder(f).Decode(&cached); err != nil {
		return nil, o4terrors.Wrap(o4terrors.ErrCodeCacheMismatch,
			"decoding embedding cache", err)
	}

	if cached.Version != cacheFileVersion ||
		cached.Model != model ||
		cached.Strategy != string(strategy) ||
		cached.Articles != articles {
		return nil, o4terrors.Newf(o4terrors.ErrCodeCacheMismatch,
			"embedding cache %s was built for model=%s strategy=%s articles=%d",
			filepath.Base(path), cached.Model, cached.Strategy, cached.Articles)
	}
	if strategy == StrategyChunkPool {
		if len(cached.Ranges) != articles {
			return nil, o4terrors.Newf(o4terrors.ErrCodeCacheMismatch,
				"embedding cache has %d chunk ranges for %d articles",
				len(cached.Ranges), articles)
		}
		if len(cached.Ranges) > 0 && cached.Ranges[len(cached.Ranges)-1].End != len(cached.Vectors) {
			return nil, o4terrors.New(o4terrors.ErrCodeCacheMismatch,
				"embedding cache chunk ranges do not cover the vector matrix")
		}
	} else if len(cached.Vectors) != articles {
		return nil, o4terrors.Newf(o4terrors.ErrCodeCacheMismatch,
			"embedding cache has %d vectors for %d articles",
			len(cached.Vectors), articles)
	}

	slog.Info("embedding_cache_loaded",
		"path", path,
		"vectors", len(cached.Vectors),
		"articles", articles,
		"strategy", strategy)

	return &SemanticIndex{
		strategy:     strategy,
		vectors:      cached.Vectors,
		ranges:       cached.Ranges,
		articleCount: articles,
	}, nil
}

// SaveSemanticIndex persists a semantic index atomically: write to a
// temp file in the same directory, then rename over the target.
func SaveSemanticIndex(cacheDir, model string, s *SemanticIndex) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "creating cache directory", err)
	}

	path := filepath.Join(cacheDir, cacheFileName(model, s.articleCount, s.strategy))

	tmp, err := os.CreateTemp(cacheDir, ".embeddings-*.tmp")
	if err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "creating temp cache file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	cached := cachedEmbeddings{
		Version:  cacheFileVersion,
		Model:    model,
		Strategy: string(s.strategy),
		Articles: s.articleCount,
		Vectors:  s.vectors,
		Ranges:   s.ranges,
	}
	if err := gob.NewEncoder(tmp).Encode(&cached); err != nil {
		tmp.Close()
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "encoding embedding cache", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "syncing embedding cache", err)
	}
	if err := tmp.Close(); err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "closing embedding cache", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "publishing embedding cache", err)
	}

	slog.Info("embedding_cache_saved",
		"path", path,
		"vectors", len(s.vectors),
		"articles", s.articleCount)
	return nil
}

// withBuildLock serializes cache builds across processes so two servers
// starting together do not embed the corpus twice.
func withBuildLock(cacheDir string, fn func() error) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "creating cache directory", err)
	}

	lock := flock.New(filepath.Join(cacheDir, ".build.lock"))
	if err := lock.Lock(); err != nil {
		return o4terrors.Wrap(o4terrors.ErrCodeCacheWrite, "acquiring cache build lock", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
