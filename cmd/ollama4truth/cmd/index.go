package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/index"
)

func newIndexCmd() *cobra.Command {
	var strategy string
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the embedding cache for the corpus",
		Long: `Embed the corpus and persist the vectors to the on-disk cache.

The cache is keyed by embedding model, corpus size and strategy, so the
server can start without re-embedding. Use --force to discard a cache
built from a previous run of the same corpus.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, strategy, force)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Embedding strategy: chunk_pool, title_label, truncate (overrides config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild even if a valid cache exists")

	return cmd
}

func runIndex(cmd *cobra.Command, strategyFlag string, force bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strategyFlag != "" {
		cfg.Retrieval.Strategy = strategyFlag
	}

	strategy, err := index.ParseStrategy(cfg.Retrieval.Strategy)
	if err != nil {
		return err
	}

	articles, err := corpus.Load(cfg.Corpus.DataDir, selectSources(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d articles from %s\n", len(articles), cfg.Corpus.DataDir)

	if force {
		path := index.CachePath(cfg.Cache.Dir, cfg.Embeddings.Model, len(articles), strategy)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	start := time.Now()
	idx, err := index.Build(ctx, articles, embedder, index.Options{
		Strategy: strategy,
		CacheDir: cfg.Cache.Dir,
	})
	if err != nil {
		return err
	}
	defer idx.Close()

	fmt.Fprintf(out, "Indexed %d articles (%d vectors, strategy %s) in %s\n",
		idx.Semantic.ArticleCount(),
		idx.Semantic.VectorCount(),
		idx.Semantic.Strategy(),
		time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "Cache: %s\n",
		index.CachePath(cfg.Cache.Dir, cfg.Embeddings.Model, len(articles), strategy))
	return nil
}
