package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/project"
	"github.com/graftkit/graft/internal/registry"
	"github.com/graftkit/graft/internal/semver"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <entry>",
	Short: "Show a registry entry and how its dependencies fit this project",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
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

	printSection(entry.Name)
	if entry.Description != "" {
		fmt.Printf("  %s\n", entry.Description)
	}
	fmt.Println()
	fmt.Printf("  file:    %s\n", entry.Path)
	if entry.CopyTo != "" {
		fmt.Printf("  copy to: %s\n", entry.CopyTo)
	} else {
		fmt.Printf("  copy to: %s/\n", cfg.Dir)
	}

	printDependencyStatus("dependencies", entry.Dependencies, manifest)
	printDependencyStatus("devDependencies", entry.DevDependencies, manifest)
	return nil
}

// printDependencyStatus renders one required-dependency section, comparing
// each requirement against the version installed in the project.
func printDependencyStatus(title string, tokens []string, m *project.Manifest) {
	if len(tokens) == 0 {
		return
	}
	printBullet(title + ":")
	for _, token := range tokens {
		name, required := registry.SplitToken(token)
		installed, ok := m.Installed(name)
		if !ok {
			printMiss(name, fmt.Sprintf("not installed (wants %s)", required))
			continue
		}
		if required == "latest" {
			printInfo(name, fmt.Sprintf("installed %s, entry tracks latest", installed))
			continue
		}

		cur, curErr := semver.Parse(installed)
		next, nextErr := semver.Parse(required)
		if curErr != nil || nextErr != nil {
			printInfo(name, fmt.Sprintf("installed %s, wants %s (not comparable)", installed, required))
			continue
		}
		switch cmp := semver.Compare(cur, next); {
		case cmp == 0:
			printOK(name, fmt.Sprintf("installed %s satisfies %s", installed, required))
		case cmp > 0:
			printWarn(name, fmt.Sprintf("installed %s is behind %s", installed, required))
		default:
			printInfo(name, fmt.Sprintf("installed %s is ahead of %s", installed, required))
		}
	}
}
