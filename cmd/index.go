package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/graftkit/graft/internal/embeddings"
	"github.com/graftkit/graft/internal/index"
	"github.com/graftkit/graft/internal/registry"
	"github.com/spf13/cobra"
)

var (
	flagIndexCatalog string
	flagIndexOut     string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the embeddings index for a registry catalog",
	Long: `Embed every entry of a local registry.json and write embeddings.json
next to it. Registry maintainers run this before publishing so clients can
use semantic search.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexCatalog, "catalog", "registry.json", "Path to the catalog to index")
	indexCmd.Flags().StringVar(&flagIndexOut, "out", "embeddings.json", "Path to write the embeddings index")
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	// Indexing requires a configured embeddings provider.
	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(flagIndexCatalog)
	if err != nil {
		return fmt.Errorf("cannot read catalog %s: %w", flagIndexCatalog, err)
	}
	catalog, rejected, err := registry.DecodeCatalog(data)
	if err != nil {
		return fmt.Errorf("invalid catalog %s: %w", flagIndexCatalog, err)
	}
	for _, r := range rejected {
		printWarn("", r.Error())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	printInfo("", fmt.Sprintf("building embeddings index using %s", prov.ModelID()))
	sp := newSpinner(fmt.Sprintf("embedding %d entries", len(catalog.Entries)))
	sp.Start()
	items, err := index.Build(ctx, prov, catalog.Entries)
	if err != nil {
		sp.StopWithError("index build failed")
		return err
	}
	sp.Stop()

	if err := index.Write(flagIndexOut, items); err != nil {
		return fmt.Errorf("cannot write index: %w", err)
	}
	printOK("", fmt.Sprintf("embeddings index written: %s (%d entries)", flagIndexOut, len(items)))
	return nil
}
