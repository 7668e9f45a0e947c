// Package installer writes registry payloads into a project tree. Existing
// files are never clobbered silently: identical content is left alone,
// drifted content is reported, and forced overwrites go through a
// backup-verify-rollback sequence.
package installer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Outcome describes what Install did (or would have done) with a destination.
type Outcome int

const (
	// OutcomeInstalled means the destination did not exist and was written.
	OutcomeInstalled Outcome = iota
	// OutcomeUnchanged means the destination already matched the payload.
	OutcomeUnchanged
	// OutcomeModified means the destination differs and was left alone.
	OutcomeModified
	// OutcomeOverwritten means the destination differed and was replaced.
	OutcomeOverwritten
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInstalled:
		return "installed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeModified:
		return "modified"
	case OutcomeOverwritten:
		return "overwritten"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options controls Install behavior.
type Options struct {
	// Force replaces a destination whose content has drifted from the payload.
	Force bool
	// DryRun resolves the outcome without touching the filesystem.
	DryRun bool
	// Logger receives non-fatal warnings. Nil falls back to the package default.
	Logger *log.Logger
}

// Install writes payload to dest, creating parent directories as needed.
func Install(dest string, payload []byte, opts Options) (Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	existing, err := os.ReadFile(dest)
	if errors.Is(err, fs.ErrNotExist) {
		if opts.DryRun {
			return OutcomeInstalled, nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return 0, fmt.Errorf("cannot create directory for %s: %w", dest, err)
		}
		if err := os.WriteFile(dest, payload, 0o644); err != nil {
			return 0, fmt.Errorf("cannot write %s: %w", dest, err)
		}
		return OutcomeInstalled, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", dest, err)
	}

	if sha256.Sum256(existing) == sha256.Sum256(payload) {
		return OutcomeUnchanged, nil
	}
	if !opts.Force {
		return OutcomeModified, nil
	}
	if opts.DryRun {
		return OutcomeOverwritten, nil
	}
	if err := overwriteWithRollback(dest, payload, logger); err != nil {
		return 0, err
	}
	return OutcomeOverwritten, nil
}

// overwriteWithRollback replaces dest with payload, verifies the written
// content, and restores the original file on failure.
func overwriteWithRollback(dest string, payload []byte, logger *log.Logger) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(dest); err == nil {
		mode = fi.Mode().Perm()
	}

	backupPath := dest + ".bak"
	_ = os.Remove(backupPath)
	if err := os.Rename(dest, backupPath); err != nil {
		return fmt.Errorf("cannot create backup: %w", err)
	}
	if err := os.WriteFile(dest, payload, mode); err != nil {
		_ = os.Rename(backupPath, dest)
		return fmt.Errorf("cannot replace %s: %w", dest, err)
	}
	if err := verifyContent(dest, payload); err != nil {
		_ = os.Rename(dest, dest+".failed")
		_ = os.Rename(backupPath, dest)
		return err
	}
	if err := cleanupBackup(backupPath); err != nil {
		logger.Warn("cannot remove backup", "path", backupPath, "err", err)
	}
	return nil
}

// verifyContent reads path back and compares it to the expected payload.
func verifyContent(path string, want []byte) error {
	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content verification failed: %w", err)
	}
	if sha256.Sum256(got) != sha256.Sum256(want) {
		return fmt.Errorf("content verification failed: %s does not match payload", path)
	}
	return nil
}
