package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagCwd     string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "graft",
	Short:        "Graft CLI — copy registry snippets into your JavaScript projects",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Graft installs code snippets from a shared registry into local projects
and flags dependency version conflicts before any file is written.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if flagVerbose {
			level = log.DebugLevel
		}
		cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagCwd, "cwd", "C", ".", "Project directory to operate on")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
}

// projectDir resolves the --cwd flag to an absolute path.
func projectDir() (string, error) {
	abs, err := filepath.Abs(flagCwd)
	if err != nil {
		return "", fmt.Errorf("cannot resolve project directory %q: %w", flagCwd, err)
	}
	return abs, nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
