// Package index builds the embeddings index a registry serves next to its
// catalog. Each entry's canonical text is embedded once and the vectors are
// published as a single JSON document.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/graftkit/graft/internal/embeddings"
	"github.com/graftkit/graft/internal/registry"
	"github.com/graftkit/graft/internal/search"
)

// Build embeds every catalog entry and returns index rows sorted by entry
// name. Vectors are normalized to unit length so lookups reduce to a dot
// product.
func Build(ctx context.Context, prov embeddings.Provider, entries []registry.Entry) ([]search.IndexedEmbedding, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to index")
	}

	sorted := make([]registry.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var (
		items []search.IndexedEmbedding
		dim   int
	)
	for _, e := range sorted {
		emb, err := prov.Embed(ctx, CanonicalText(e))
		if err != nil {
			return nil, fmt.Errorf("cannot embed %s: %w", e.Name, err)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return nil, fmt.Errorf("embedding dim changed mid-run: got %d want %d", len(emb), dim)
		}
		items = append(items, search.IndexedEmbedding{
			Name:   e.Name,
			Vector: search.NormalizeL2(emb),
		})
	}
	return items, nil
}

// CanonicalText returns the canonical text used for embeddings generation.
func CanonicalText(e registry.Entry) string {
	parts := []string{"name: " + strings.TrimSpace(e.Name)}
	if strings.TrimSpace(e.Description) != "" {
		parts = append(parts, "description: "+strings.TrimSpace(e.Description))
	}
	return strings.Join(parts, "\n")
}

// Write marshals items and writes them to path via a temp file rename so a
// concurrent reader never sees a partial document.
func Write(path string, items []search.IndexedEmbedding) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cannot marshal index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create out dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".embeddings-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp index: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot close temp index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot move index into place: %w", err)
	}
	return nil
}
