package project

import (
	"os"
	"path/filepath"
	"strings"
)

// PackageManager identifies the npm-compatible tool a project is managed with.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
	Bun  PackageManager = "bun"
)

// lockfiles maps lockfile names to their package manager, in probe order.
var lockfiles = []struct {
	name string
	pm   PackageManager
}{
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"package-lock.json", NPM},
}

// DetectPackageManager probes dir for a lockfile. The first hit wins;
// projects without any lockfile default to npm.
func DetectPackageManager(dir string) PackageManager {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(dir, lf.name)); err == nil {
			return lf.pm
		}
	}
	return NPM
}

// AddCommand renders the shell command that would add pkgs to the project.
// graft prints the command as a next step; it never runs it.
func (pm PackageManager) AddCommand(pkgs []string, dev bool) string {
	verb := "add"
	devFlag := "-D"
	switch pm {
	case NPM:
		verb = "install"
	case Bun:
		devFlag = "-d"
	}

	parts := []string{string(pm), verb}
	if dev {
		parts = append(parts, devFlag)
	}
	parts = append(parts, pkgs...)
	return strings.Join(parts, " ")
}
