package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/graftkit/graft/internal/config"
	"github.com/graftkit/graft/internal/installer"
	"github.com/graftkit/graft/internal/project"
	"github.com/graftkit/graft/internal/registry"
	"github.com/spf13/cobra"
)

var (
	flagAddForce  bool
	flagAddDryRun bool
	flagAddDiff   bool
	flagAddDir    string
)

var addCmd = &cobra.Command{
	Use:   "add <entry>...",
	Short: "Install registry entries into the project",
	Long: `Fetch one or more entries from the registry and copy their files into
the project. Entries whose dependencies conflict with the installed versions
in package.json are skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&flagAddForce, "force", false, "Install despite version conflicts and overwrite drifted files")
	addCmd.Flags().BoolVar(&flagAddDryRun, "dry-run", false, "Report what would change without writing files")
	addCmd.Flags().BoolVar(&flagAddDiff, "diff", false, "Print a unified diff for files that have drifted")
	addCmd.Flags().StringVar(&flagAddDir, "dir", "", "Destination directory for entries without copy_to (overrides graft.yaml)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
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
	logger := loggerFromContext(cmd.Context())

	installDir := cfg.Dir
	if flagAddDir != "" {
		installDir = flagAddDir
	}

	unlock, err := installer.Lock(dir, 10*time.Second)
	if err != nil {
		return err
	}
	defer unlock()

	client, err := registry.NewClient(cfg.Registry, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	sp := newSpinner("fetching catalog")
	sp.Start()
	catalog, err := client.FetchCatalog(ctx)
	if err != nil {
		sp.StopWithError(fmt.Sprintf("cannot fetch catalog: %v", err))
		return fmt.Errorf("cannot fetch catalog: %w", err)
	}
	sp.StopWithSuccess(fmt.Sprintf("catalog loaded (%d entries)", len(catalog.Entries)))

	var (
		failed     int
		newDeps    []string
		newDevDeps []string
	)
	for _, name := range args {
		entry, ok := catalog.Find(name)
		if !ok {
			printMiss(name, "not in registry")
			failed++
			continue
		}

		conflicts := registry.Conflicts(entry, manifest, registry.FieldDependencies)
		conflicts = append(conflicts, registry.Conflicts(entry, manifest, registry.FieldDevDependencies)...)
		for _, c := range conflicts {
			printWarn(entry.Name, fmt.Sprintf("dependency %s: installed %s, wants %s", c.Name, c.Current, c.Next))
		}
		if len(conflicts) > 0 && !flagAddForce {
			printSkip(entry.Name, "skipped (version conflicts; use --force to install anyway)")
			continue
		}

		payload, err := client.FetchPayload(ctx, entry)
		if err != nil {
			printErr(entry.Name, fmt.Sprintf("cannot fetch payload: %v", err))
			failed++
			continue
		}

		dest, err := entryDestination(dir, installDir, entry)
		if err != nil {
			printErr(entry.Name, err.Error())
			failed++
			continue
		}
		rel := displayPath(dir, dest)

		outcome, err := installer.Install(dest, payload, installer.Options{
			Force:  flagAddForce,
			DryRun: flagAddDryRun,
			Logger: logger,
		})
		if err != nil {
			printErr(entry.Name, err.Error())
			failed++
			continue
		}

		switch outcome {
		case installer.OutcomeInstalled:
			printOK(entry.Name, verb("installed", flagAddDryRun)+" "+rel)
		case installer.OutcomeUnchanged:
			printSkip(entry.Name, rel+" already up to date")
		case installer.OutcomeOverwritten:
			printOK(entry.Name, verb("overwrote", flagAddDryRun)+" "+rel)
		case installer.OutcomeModified:
			printWarn(entry.Name, rel+" has local changes (use --force to overwrite)")
			if flagAddDiff {
				current, readErr := os.ReadFile(dest)
				if readErr == nil {
					body, _ := installer.Diff(rel, current, payload, installer.DiffOptions{MaxBytes: 1 << 20})
					fmt.Print(body)
				}
			}
			continue
		}

		newDeps = appendMissingDeps(newDeps, entry.Dependencies, manifest)
		newDevDeps = appendMissingDeps(newDevDeps, entry.DevDependencies, manifest)
	}

	suggestInstall(cfg, dir, newDeps, newDevDeps)

	if failed > 0 {
		return fmt.Errorf("%d entr%s failed", failed, plural(failed, "y", "ies"))
	}
	return nil
}

// appendMissingDeps collects dependency tokens whose package is absent from
// the manifest, preserving the token's version spec for the install command.
func appendMissingDeps(acc []string, tokens []string, m *project.Manifest) []string {
	for _, token := range tokens {
		name, _ := registry.SplitToken(token)
		if _, ok := m.Installed(name); ok {
			continue
		}
		acc = append(acc, token)
	}
	return acc
}

// suggestInstall prints the package manager command that installs the
// dependencies the added entries need.
func suggestInstall(cfg *config.Config, dir string, deps, devDeps []string) {
	if len(deps) == 0 && len(devDeps) == 0 {
		return
	}
	pm := project.PackageManager(cfg.PackageManager)
	if pm == "" {
		pm = project.DetectPackageManager(dir)
	}
	if len(deps) > 0 {
		printNextStep("Install missing dependencies", pm.AddCommand(dedupe(deps), false))
	}
	if len(devDeps) > 0 {
		printNextStep("Install missing dev dependencies", pm.AddCommand(dedupe(devDeps), true))
	}
}

// entryDestination resolves where an entry's payload lands inside the project.
// copy_to paths from the catalog are sanitized so a hostile registry cannot
// write outside the project tree.
func entryDestination(projectDir, installDir string, e *registry.Entry) (string, error) {
	if e.CopyTo != "" {
		clean := sanitizeRegistryPath(e.CopyTo)
		if clean == "" {
			return "", fmt.Errorf("unsafe copy_to path %q", e.CopyTo)
		}
		return filepath.Join(projectDir, clean), nil
	}
	return filepath.Join(projectDir, installDir, filepath.Base(e.Path)), nil
}

// sanitizeRegistryPath rejects absolute paths and traversal sequences in catalog paths.
func sanitizeRegistryPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "/") {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return ""
		}
	}
	clean := filepath.Clean(name)
	if clean == "." {
		return ""
	}
	return clean
}

// displayPath renders dest relative to the project when possible.
func displayPath(projectDir, dest string) string {
	if rel, err := filepath.Rel(projectDir, dest); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return dest
}

func verb(past string, dryRun bool) string {
	if dryRun {
		return "would have " + past
	}
	return past
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// dedupe removes duplicate tokens while keeping first-seen order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
