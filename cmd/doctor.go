package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/embeddings"
	"github.com/graftkit/graft/internal/project"
	"github.com/graftkit/graft/internal/registry"
	"github.com/graftkit/graft/internal/semver"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that graft's configuration, project, and registry are in working
order. Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	dir, err := projectDir()
	if err != nil {
		return err
	}

	printSection("graft doctor")
	fmt.Println()

	// ── Check 1: package.json present and parseable ───────────────────────────
	fmt.Println("[ project ]")
	manifest, manifestErr := project.LoadManifest(dir)
	if manifestErr != nil {
		failD("no readable package.json in %s — graft works inside JavaScript projects", dir)
	} else {
		deps := len(manifest.Dependencies) + len(manifest.DevDependencies)
		printOK("", fmt.Sprintf("package.json ok — %d declared dependenc%s", deps, plural(deps, "y", "ies")))
		if n := countUnparsableVersions(manifest); n > 0 {
			printWarn("", fmt.Sprintf("%d dependency version(s) could not be parsed; conflict checks treat them verbatim", n))
		}
	}
	fmt.Println()

	// ── Check 2: package manager on PATH ──────────────────────────────────────
	fmt.Println("[ package manager ]")
	pm := project.DetectPackageManager(dir)
	if _, err := exec.LookPath(string(pm)); err != nil {
		printWarn("", fmt.Sprintf("%s detected but not on PATH — install suggestions will not run", pm))
	} else {
		printOK("", fmt.Sprintf("%s available", pm))
	}
	fmt.Println()

	// ── Check 3: graft.yaml is valid ──────────────────────────────────────────
	fmt.Println("[ graft.yaml ]")
	cfg, loadErr := config.Load(dir)
	if loadErr != nil {
		failD("cannot load %s — run 'graft init' first (%v)", config.Path(dir), loadErr)
	} else {
		printOK("", fmt.Sprintf("valid YAML — registry %s, dir %s", cfg.Registry, cfg.Dir))
	}
	fmt.Println()

	// ── Check 4: registry reachable ───────────────────────────────────────────
	fmt.Println("[ registry ]")
	var client *registry.Client
	if loadErr == nil {
		var clientErr error
		client, clientErr = registry.NewClient(cfg.Registry, loggerFromContext(cmd.Context()))
		if clientErr != nil {
			failD("invalid registry URL: %v", clientErr)
		} else {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			catalog, err := client.FetchCatalog(ctx)
			cancel()
			if err != nil {
				failD("cannot fetch catalog: %v", err)
			} else {
				printOK("", fmt.Sprintf("registry ok — %d entries served", len(catalog.Entries)))
			}
		}
	} else {
		printWarn("", "skipped (graft.yaml not loaded)")
	}
	fmt.Println()

	// ── Check 5: embeddings configuration ─────────────────────────────────────
	fmt.Println("[ embeddings ]")
	embCfg, embErr := embeddings.LoadConfig()
	var prov embeddings.Provider
	if embErr == nil {
		prov, embErr = embeddings.NewFromConfig(embCfg)
	}
	if embErr != nil {
		printSkip("", fmt.Sprintf("not configured (semantic search falls back to keyword): %v", embErr))
	} else {
		printOK("", fmt.Sprintf("provider configured: %s", prov.ModelID()))
	}
	if client != nil {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		_, err := client.FetchEmbeddings(ctx)
		cancel()
		if err != nil {
			printWarn("", "registry serves no embeddings index — semantic search will find nothing")
		} else {
			printOK("", "embeddings index present")
		}
	}
	fmt.Println()

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. graft is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// countUnparsableVersions counts declared dependency versions the version
// parser rejects in both dependency maps.
func countUnparsableVersions(m *project.Manifest) int {
	n := 0
	for _, v := range m.Dependencies {
		if _, err := semver.Parse(v); err != nil {
			n++
		}
	}
	for _, v := range m.DevDependencies {
		if _, err := semver.Parse(v); err != nil {
			n++
		}
	}
	return n
}
