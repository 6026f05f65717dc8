package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lucasfrag/ollama4truth/internal/api"
	"github.com/lucasfrag/ollama4truth/internal/evidence"
	"github.com/lucasfrag/ollama4truth/internal/history"
	"github.com/lucasfrag/ollama4truth/internal/llm"
	"github.com/lucasfrag/ollama4truth/internal/pipeline"
	"github.com/lucasfrag/ollama4truth/internal/questions"
	"github.com/lucasfrag/ollama4truth/internal/search"
	"github.com/lucasfrag/ollama4truth/internal/verdict"
)

func newServeCmd() *cobra.Command {
	var port int
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fact-checking API server",
		Long: `Start the HTTP API server.

Loads the corpus, builds or restores the retrieval indexes, and serves
the streaming /analyze-stream endpoint plus analysis history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, port, noHistory)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Disable the analysis history database")

	return cmd
}

func runServe(cmd *cobra.Command, port int, noHistory bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	defaultMode, err := evidence.ParseMode(cfg.Evidence.Mode)
	if err != nil {
		return err
	}

	client, err := newWebClient(cfg)
	if err != nil {
		return err
	}
	if err := ensureWebConfigured(defaultMode, client); err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	idx, err := buildIndex(ctx, cfg, embedder)
	if err != nil {
		return err
	}
	defer idx.Close()

	engine, err := newEngine(cfg, idx, embedder)
	if err != nil {
		return err
	}
	aggregator := search.NewAggregator(engine, search.DefaultParallelism)

	var web evidence.WebSearcher
	if client != nil {
		web = client
	}

	orchestrator := evidence.NewOrchestrator(aggregator, web, evidence.Options{
		MinCorpusResults: cfg.Evidence.MinCorpusResults,
		WebTimeout:       cfg.Evidence.WebTimeout,
		WebPacing:        cfg.Evidence.WebPacing,
		TotalK:           cfg.Retrieval.TotalK,
		Search: search.Options{
			K: cfg.Retrieval.PerQuestionK,
		},
	})

	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
	})
	if err != nil {
		return err
	}

	var store *history.Store
	if !noHistory {
		store, err = history.Open(historyPath())
		if err != nil {
			slog.Warn("history_disabled", "error", err)
		} else {
			defer store.Close()
		}
	}

	p := pipeline.New(
		questions.NewGenerator(provider),
		orchestrator,
		verdict.NewClassifier(provider),
		store,
	)

	server := api.NewServer(p, store, api.Defaults{
		Mode:     defaultMode,
		Strategy: verdict.StrategyLabelVote,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server_starting",
		"addr", addr,
		"mode", cfg.Evidence.Mode,
		"method", cfg.Retrieval.Method,
		"articles", idx.Lexical.DocCount())
	fmt.Fprintf(cmd.OutOrStdout(), "ollama4truth listening on %s\n", addr)

	return server.ListenAndServe(ctx, addr)
}
