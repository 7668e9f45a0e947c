package registry

import "strings"

// Entry is one installable item in the registry catalog. Path is the
// location of the payload file relative to the registry base URL
// (serialized as "entry" in registry.json).
type Entry struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Path            string   `json:"entry"`
	Dependencies    []string `json:"dependencies,omitempty"`
	DevDependencies []string `json:"devDependencies,omitempty"`
	CopyTo          string   `json:"copyTo,omitempty"`
}

// Catalog is the registry listing served at <base>/registry.json.
type Catalog struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Find returns the catalog entry with the given name.
func (c *Catalog) Find(name string) (*Entry, bool) {
	for i := range c.Entries {
		if c.Entries[i].Name == name {
			return &c.Entries[i], true
		}
	}
	return nil, false
}

// SplitToken splits a dependency token like "react@^18.0.0" into its
// package name and required version text. A token without a version
// suffix defaults to "latest".
func SplitToken(token string) (name, version string) {
	parts := strings.Split(token, "@")
	name = parts[0]
	version = "latest"
	if len(parts) > 1 {
		version = parts[1]
	}
	return name, version
}
