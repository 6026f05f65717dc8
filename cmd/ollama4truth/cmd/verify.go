package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucasfrag/ollama4truth/internal/evidence"
	"github.com/lucasfrag/ollama4truth/internal/history"
	"github.com/lucasfrag/ollama4truth/internal/llm"
	"github.com/lucasfrag/ollama4truth/internal/pipeline"
	"github.com/lucasfrag/ollama4truth/internal/questions"
	"github.com/lucasfrag/ollama4truth/internal/search"
	"github.com/lucasfrag/ollama4truth/internal/verdict"
)

// verifyOptions holds CLI flags for verify.
type verifyOptions struct {
	mode      string
	strategy  string
	format    string
	noHistory bool
}

func newVerifyCmd() *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify <claim>",
		Short: "Fact-check a claim",
		Long: `Run the full analysis pipeline for one claim: question
decomposition, evidence retrieval, and verdict.

Examples:
  ollama4truth verify "Vacinas de COVID-19 alteram o DNA humano"
  ollama4truth verify "O Brasil saiu do mapa da fome" --mode corpus
  ollama4truth verify "..." --strategy llm_verdict --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Evidence mode: corpus, web, hybrid (overrides config)")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "label_vote", "Verdict strategy: label_vote, llm_verdict")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the analysis in history")

	return cmd
}

func runVerify(cmd *cobra.Command, claim string, opts verifyOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.mode != "" {
		cfg.Evidence.Mode = opts.mode
	}

	mode, err := evidence.ParseMode(cfg.Evidence.Mode)
	if err != nil {
		return err
	}
	strategy, err := verdict.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	client, err := newWebClient(cfg)
	if err != nil {
		return err
	}
	if err := ensureWebConfigured(mode, client); err != nil {
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

	var web evidence.WebSearcher
	if client != nil {
		web = client
	}

	orchestrator := evidence.NewOrchestrator(
		search.NewAggregator(engine, search.DefaultParallelism),
		web,
		evidence.Options{
			MinCorpusResults: cfg.Evidence.MinCorpusResults,
			WebTimeout:       cfg.Evidence.WebTimeout,
			WebPacing:        cfg.Evidence.WebPacing,
			TotalK:           cfg.Retrieval.TotalK,
			Search:           search.Options{K: cfg.Retrieval.PerQuestionK},
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
	if !opts.noHistory {
		if s, err := history.Open(historyPath()); err == nil {
			store = s
			defer store.Close()
		}
	}

	p := pipeline.New(questions.NewGenerator(provider), orchestrator, verdict.NewClassifier(provider), store)

	quiet := opts.format == "json"
	hooks := &pipeline.Hooks{
		OnQuestions: func(qs *questions.QuestionSet) {
			if quiet {
				return
			}
			color.New(color.FgCyan, color.Bold).Fprintln(out, "Verification questions")
			for i, q := range qs.Questions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, q)
			}
			fmt.Fprintln(out)
		},
		OnEvidence: func(b *evidence.Bundle) {
			if quiet {
				return
			}
			color.New(color.FgCyan, color.Bold).Fprintf(out, "Evidence (%s, %d results)\n", b.Mode, b.TotalResults())
			for _, group := range b.Evidences {
				fmt.Fprintf(out, "  %s\n", group.Question)
				for _, r := range group.Results {
					fmt.Fprintf(out, "    - %s (%.4f) %s\n", r.Title, r.Score, r.Link)
				}
			}
			fmt.Fprintln(out)
		},
	}

	analysis, err := p.Analyze(ctx, claim, mode, strategy, hooks)
	if err != nil {
		return err
	}

	if quiet {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printVerdict(cmd, analysis)
	return nil
}

// printVerdict renders the verdict with a color keyed to the class.
func printVerdict(cmd *cobra.Command, a *pipeline.Analysis) {
	out := cmd.OutOrStdout()
	v := a.Verdict

	c := color.New(color.FgYellow, color.Bold)
	switch v.Classification {
	case verdict.ClassSupported:
		c = color.New(color.FgGreen, color.Bold)
	case verdict.ClassRefuted:
		c = color.New(color.FgRed, color.Bold)
	}

	c.Fprintf(out, "Verdict: %s", v.Classification)
	if v.Confidence > 0 {
		fmt.Fprintf(out, " (%.1f%% confidence)", v.Confidence)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", v.Justification)

	if len(v.LabelBreakdown) > 0 {
		fmt.Fprint(out, "  labels:")
		for label, count := range v.LabelBreakdown {
			fmt.Fprintf(out, " %s=%d", label, count)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  analysis %s took %s\n", a.ID, a.Duration.Round(time.Millisecond))
}
