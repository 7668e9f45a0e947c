package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/registry"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries the registry serves",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'graft init' first.", err)
	}
	client, err := registry.NewClient(cfg.Registry, loggerFromContext(cmd.Context()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("cannot fetch catalog: %w", err)
	}

	fmt.Printf("\nRegistry %s (%d entries)\n\n", client.BaseURL(), len(catalog.Entries))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, e := range catalog.Entries {
		state := " "
		if dest, destErr := entryDestination(dir, cfg.Dir, &e); destErr == nil {
			if _, statErr := os.Stat(dest); statErr == nil {
				state = styleOK.Render("✓")
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", state, e.Name, truncate(e.Description, 60))
	}
	return w.Flush()
}
