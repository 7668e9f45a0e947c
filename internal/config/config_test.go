package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Registry:       "https://registry.example.com",
		Dir:            "src/snippets",
		PackageManager: "pnpm",
		Search:         SearchConfig{TopK: 5, MinScore: 0.42},
	}
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Registry != cfg.Registry || got.Dir != cfg.Dir || got.PackageManager != cfg.PackageManager {
		t.Fatalf("got %+v want %+v", got, cfg)
	}
	if got.Search.TopK != 5 || got.Search.MinScore != 0.42 {
		t.Fatalf("search config lost: %+v", got.Search)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("registry: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if got.Registry != def.Registry {
		t.Fatalf("registry default not applied: %q", got.Registry)
	}
	if got.Dir != def.Dir {
		t.Fatalf("dir default not applied: %q", got.Dir)
	}
	if got.Search.TopK != def.Search.TopK || got.Search.MinScore != def.Search.MinScore {
		t.Fatalf("search defaults not applied: %+v", got.Search)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("registry: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
