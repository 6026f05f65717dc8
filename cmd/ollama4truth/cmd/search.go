package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasfrag/ollama4truth/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	method string
	weight float64
	format string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the fact-checking corpus",
		Long: `Run a single query against the corpus.

Examples:
  ollama4truth search "vacina causa autismo"
  ollama4truth search "urna eletrônica fraude" --method lexical -n 3
  ollama4truth search "auxílio emergencial" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorpusSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 5, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "Retrieval method: lexical, semantic, hybrid (overrides config)")
	cmd.Flags().Float64VarP(&opts.weight, "weight", "w", -1, "BM25 weight for hybrid fusion, in [0,1]")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runCorpusSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
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

	searchOpts := search.Options{K: opts.limit}
	if opts.method != "" {
		method, err := search.ParseMethod(opts.method)
		if err != nil {
			return err
		}
		searchOpts.Method = method
	}
	if opts.weight >= 0 {
		w := opts.weight
		searchOpts.BM25Weight = &w
	}

	results, err := engine.Retrieve(ctx, query, searchOpts)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (%.4f)\n", i+1, r.Title, r.Score)
		if r.Label != "" {
			fmt.Fprintf(out, "   label: %s\n", r.Label)
		}
		fmt.Fprintf(out, "   %s\n", r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(out, "   %s\n", r.Snippet)
		}
		fmt.Fprintln(out)
	}
	return nil
}
