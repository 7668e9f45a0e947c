package cmd

import (
	"fmt"
	"os"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/project"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up graft in the current project",
	Long: `Initialize graft for a JavaScript project.

Writes graft.yaml next to package.json, detects the package manager from
the project's lockfile, and prepares ~/.graft/ for embeddings credentials.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagInitRegistry string

func init() {
	initCmd.Flags().StringVar(&flagInitRegistry, "registry", "", "Registry URL to write into graft.yaml")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	// ── 1. The project must carry a package.json ──────────────────────────────
	manifest, err := project.LoadManifest(dir)
	if err != nil {
		return fmt.Errorf("not a JavaScript project: %w\nRun graft from a directory with a package.json.", err)
	}
	name := manifest.Name
	if name == "" {
		name = dir
	}
	printOK("", fmt.Sprintf("Project found: %s", name))

	// ── 2. Write graft.yaml if missing ─────────────────────────────────────────
	cfgPath := config.Path(dir)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.Default()
		if flagInitRegistry != "" {
			cfg.Registry = flagInitRegistry
		}
		cfg.PackageManager = string(project.DetectPackageManager(dir))
		if err := config.Save(dir, cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. Prepare ~/.graft/ for embeddings credentials ────────────────────────
	graftDir, err := config.GraftDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(graftDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", graftDir, err)
	}
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Graft directory ready: %s", graftDir))

	fmt.Println("\n✓  graft init complete. Run 'graft list' to browse the registry.")
	return nil
}
