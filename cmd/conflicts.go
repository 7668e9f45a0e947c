package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/project"
	"github.com/graftkit/graft/internal/registry"
	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <entry>",
	Short: "Check a registry entry's dependencies against the project",
	Long: `Report every dependency of a registry entry whose required version
conflicts with the version installed in package.json, without installing
anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'graft init' first.", err)
	}
	manifest, err := project.LoadManifest(dir)
	if err != nil {
		return fmt.Errorf("cannot load project manifest: %w", err)
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

	entry, ok := catalog.Find(args[0])
	if !ok {
		return fmt.Errorf("entry %q not found in registry %s", args[0], client.BaseURL())
	}

	printSection(fmt.Sprintf("graft conflicts %s", entry.Name))

	total := 0
	for _, field := range []registry.DependencyField{registry.FieldDependencies, registry.FieldDevDependencies} {
		rows := registry.Conflicts(entry, manifest, field)
		if len(rows) == 0 {
			continue
		}
		printBullet(string(field) + ":")
		for _, c := range rows {
			printWarn(c.Name, fmt.Sprintf("installed %s, wants %s", c.Current, c.Next))
		}
		total += len(rows)
	}

	if total == 0 {
		fmt.Println()
		printOK("", "no version conflicts")
	} else {
		fmt.Printf("\n  ⚠  %d conflict(s). 'graft add %s --force' installs anyway.\n", total, entry.Name)
	}
	return nil
}
