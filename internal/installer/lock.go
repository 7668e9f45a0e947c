package installer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Lock serializes installs into a project across processes. It returns an
// unlock func on success and an error when the lock cannot be obtained
// before timeout elapses.
func Lock(projectDir string, timeout time.Duration) (func(), error) {
	path, err := lockPath(projectDir)
	if err != nil {
		return nil, err
	}
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire project lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another graft run is in progress (lock: %s)", path)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// lockPath determines the per-project lock file, keyed by the absolute
// project path so unrelated projects never contend.
func lockPath(projectDir string) (string, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve project path: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:8]) + ".lock"

	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		dir := filepath.Join(cacheDir, "graft", "locks")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, name), nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir := filepath.Join(home, ".graft", "locks")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("cannot determine writable lock directory")
}
