package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/embeddings"
	"github.com/graftkit/graft/internal/registry"
	"github.com/graftkit/graft/internal/search"
	"github.com/spf13/cobra"
)

var (
	flagSearchKeyword  bool
	flagSearchSemantic bool
	flagSearchK        int
	flagSearchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search registry entries by keyword or semantic similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&flagSearchKeyword, "keyword", false, "Force keyword search only")
	searchCmd.Flags().BoolVar(&flagSearchSemantic, "semantic", false, "Force semantic search only (error if unavailable)")
	searchCmd.Flags().IntVar(&flagSearchK, "k", 0, "Number of results to show")
	searchCmd.Flags().Float64Var(&flagSearchMinScore, "min-score", 0, "Minimum similarity score to include (semantic only)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'graft init' first.", err)
	}
	logger := loggerFromContext(cmd.Context())
	client, err := registry.NewClient(cfg.Registry, logger)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	topK := resolveTopK(cmd, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("cannot fetch catalog: %w", err)
	}

	// Keyword-only mode.
	if flagSearchKeyword {
		printKeywordResults(query, search.Keyword(catalog.Entries, query, topK))
		return nil
	}

	// Strict semantic mode surfaces failures instead of falling back.
	if flagSearchSemantic {
		results, err := semanticSearch(ctx, cmd, client, cfg, query, topK)
		if err != nil {
			return err
		}
		printSemanticResults(query, results, catalog)
		return nil
	}

	// Default: attempt semantic; fall back to keyword on failure.
	results, err := semanticSearch(ctx, cmd, client, cfg, query, topK)
	if err != nil {
		logger.Debug("semantic search unavailable, falling back to keyword", "err", err)
		printKeywordResults(query, search.Keyword(catalog.Entries, query, topK))
		return nil
	}
	printSemanticResults(query, results, catalog)
	return nil
}

func semanticSearch(ctx context.Context, cmd *cobra.Command, client *registry.Client, cfg *config.Config, query string, topK int) ([]search.Result, error) {
	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return nil, err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return nil, err
	}

	loader := search.NewIndexLoader(client, loggerFromContext(cmd.Context()))
	results, err := search.Semantic(ctx, prov, loader, query, topK)
	if err != nil {
		return nil, err
	}

	minScore := resolveSemanticMinScore(cmd, cfg)
	if minScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Similarity >= minScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no semantic results above min score %.3f", minScore)
	}
	return results, nil
}

// resolveSemanticMinScore decides the similarity threshold for this run.
func resolveSemanticMinScore(cmd *cobra.Command, cfg *config.Config) float64 {
	// If user explicitly sets --min-score, always honor it.
	if cmd.Flags().Changed("min-score") {
		return flagSearchMinScore
	}

	// If user explicitly sets --k, do not apply any default filtering.
	if cmd.Flags().Changed("k") {
		return 0
	}

	// Otherwise apply the configured threshold to avoid irrelevant tail results.
	return cfg.Search.MinScore
}

func resolveTopK(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("k") {
		return flagSearchK
	}
	return cfg.Search.TopK
}

func printSemanticResults(query string, results []search.Result, catalog *registry.Catalog) {
	fmt.Printf("\ngraft search %q\n\n", query)
	fmt.Printf("Results (%d found):\n", len(results))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, r := range results {
		desc := ""
		if e, ok := catalog.Find(r.Name); ok {
			desc = truncate(e.Description, 60)
		}
		fmt.Fprintf(w, "  %d.\t[%.3f]\t%s\t%s\n", i+1, r.Similarity, r.Name, desc)
	}
	_ = w.Flush()
}

func printKeywordResults(query string, entries []registry.Entry) {
	fmt.Printf("\ngraft search %q\n\n", query)
	fmt.Printf("Results (%d found):\n", len(entries))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, e := range entries {
		fmt.Fprintf(w, "  %d.\t%s\t%s\n", i+1, e.Name, truncate(e.Description, 60))
	}
	_ = w.Flush()
}
