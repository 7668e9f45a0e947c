package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the slice of package.json graft cares about.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// LoadManifest reads and parses <dir>/package.json. A missing manifest is an
// error: graft only installs into JavaScript/TypeScript projects.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return &m, nil
}

// Installed returns the declared version for name across both dependency
// maps. When a package appears in both, the devDependencies entry wins.
func (m *Manifest) Installed(name string) (string, bool) {
	if v, ok := m.DevDependencies[name]; ok {
		return v, true
	}
	v, ok := m.Dependencies[name]
	return v, ok
}
