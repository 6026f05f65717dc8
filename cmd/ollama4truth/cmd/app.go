package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/lucasfrag/ollama4truth/internal/config"
	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/embed"
	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
	"github.com/lucasfrag/ollama4truth/internal/evidence"
	"github.com/lucasfrag/ollama4truth/internal/index"
	"github.com/lucasfrag/ollama4truth/internal/search"
	"github.com/lucasfrag/ollama4truth/internal/websearch"
)

// queryCacheSize bounds the in-memory LRU of query embeddings.
const queryCacheSize = 1024

// loadConfig loads .env (when present), then the YAML config and
// environment overrides.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("dotenv_skipped", "error", err)
	}
	return config.Load(configPath)
}

// selectSources resolves the configured source names against the known
// datasets. An empty selection means all of them.
func selectSources(cfg *config.Config) []corpus.Source {
	all := corpus.DefaultSources()
	if len(cfg.Corpus.Sources) == 0 {
		return all
	}

	wanted := make(map[string]bool, len(cfg.Corpus.Sources))
	for _, name := range cfg.Corpus.Sources {
		wanted[name] = true
	}

	var selected []corpus.Source
	for _, src := range all {
		if wanted[src.Name] {
			selected = append(selected, src)
		}
	}
	return selected
}

// newEmbedder builds the Ollama embedder with an in-memory query cache.
func newEmbedder(ctx context.Context, cfg *config.Config) (embed.Embedder, error) {
	ollama, err := embed.NewOllamaEmbedder(ctx, embed.OllamaConfig{
		Host:      cfg.Embeddings.OllamaHost,
		Model:     cfg.Embeddings.Model,
		BatchSize: cfg.Embeddings.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	return embed.NewCachedEmbedder(ollama, queryCacheSize)
}

// buildIndex loads the corpus and builds (or restores from cache) both
// retrieval indexes.
func buildIndex(ctx context.Context, cfg *config.Config, embedder embed.Embedder) (*index.Index, error) {
	articles, err := corpus.Load(cfg.Corpus.DataDir, selectSources(cfg))
	if err != nil {
		return nil, err
	}

	strategy, err := index.ParseStrategy(cfg.Retrieval.Strategy)
	if err != nil {
		return nil, err
	}

	return index.Build(ctx, articles, embedder, index.Options{
		Strategy: strategy,
		CacheDir: cfg.Cache.Dir,
	})
}

// newEngine builds the query engine from the configured method and
// fusion weight.
func newEngine(cfg *config.Config, idx *index.Index, embedder embed.Embedder) (*search.Engine, error) {
	method, err := search.ParseMethod(cfg.Retrieval.Method)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(idx, embedder, method, cfg.Retrieval.BM25Weight), nil
}

// newWebClient builds the Google Custom Search client, or returns nil
// when credentials are not configured.
func newWebClient(cfg *config.Config) (*websearch.Client, error) {
	if cfg.Web.APIKey == "" || cfg.Web.CX == "" {
		slog.Info("web_search_disabled", "reason", "missing credentials")
		return nil, nil
	}
	return websearch.NewClient(websearch.Config{
		APIKey:     cfg.Web.APIKey,
		CX:         cfg.Web.CX,
		NumResults: cfg.Web.NumResults,
	})
}

// ensureWebConfigured rejects a web-only evidence mode when search
// credentials are missing, before any pipeline work starts. Hybrid mode
// tolerates a nil client; its fallback degrades to empty web results.
func ensureWebConfigured(mode evidence.Mode, client *websearch.Client) error {
	if mode == evidence.ModeWeb && client == nil {
		return o4terrors.New(o4terrors.ErrCodeMissingCredentials,
			"evidence mode web requires GOOGLE_API_KEY and GOOGLE_CX")
	}
	return nil
}

// historyPath returns the analysis history database location.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ollama4truth", "history.db")
	}
	return filepath.Join(home, ".ollama4truth", "history.db")
}
