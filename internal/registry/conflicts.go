package registry

import (
	"strings"

	"github.com/graftkit/graft/internal/project"
)

// DependencyField selects which dependency list of an entry to scan.
type DependencyField string

const (
	FieldDependencies    DependencyField = "dependencies"
	FieldDevDependencies DependencyField = "devDependencies"
)

// Conflict reports one installed package whose version does not line up
// with what a registry entry requires.
type Conflict struct {
	Name    string
	Current string
	Next    string
}

// Conflicts scans one dependency list of entry against the project manifest
// and returns every requirement that collides with an installed version.
//
// Packages the project does not declare are skipped: they are additions,
// not conflicts. A required version of "latest" is always reported, since
// whatever is installed may be behind it. For everything else the leading
// segment of both version strings (the text before the first ".") is
// compared verbatim, so a "^" or "~" prefix counts toward the comparison
// and "^18" differs from "18".
//
// Results keep the entry's token order, duplicates included. The scan never
// fails; malformed tokens simply produce no match.
func Conflicts(entry *Entry, m *project.Manifest, field DependencyField) []Conflict {
	conflicts := []Conflict{}
	if entry == nil || m == nil {
		return conflicts
	}

	var tokens []string
	switch field {
	case FieldDependencies:
		tokens = entry.Dependencies
	case FieldDevDependencies:
		tokens = entry.DevDependencies
	}

	for _, token := range tokens {
		name, required := SplitToken(token)
		current, ok := m.Installed(name)
		if !ok {
			continue
		}
		if required == "latest" {
			conflicts = append(conflicts, Conflict{Name: name, Current: current, Next: required})
			continue
		}
		if majorSegment(current) != majorSegment(required) {
			conflicts = append(conflicts, Conflict{Name: name, Current: current, Next: required})
		}
	}
	return conflicts
}

// majorSegment returns everything before the first "." of a version string.
func majorSegment(v string) string {
	if i := strings.Index(v, "."); i >= 0 {
		return v[:i]
	}
	return v
}
