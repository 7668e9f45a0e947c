package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/graftkit/graft/internal/embeddings"
)

// DefaultTopK is the number of results Semantic returns when the caller
// does not ask for a specific count.
const DefaultTopK = 3

// Result is one semantic search hit. Vector is the indexed row's vector,
// carried through so callers can inspect or re-rank without reloading the
// index.
type Result struct {
	Name       string
	Vector     []float32
	Similarity float64
}

// Semantic embeds query with prov and ranks the index rows by dot product
// against the normalized query vector. Ties keep index order. An empty
// index (including one that failed to load) yields no results and no error.
func Semantic(ctx context.Context, prov embeddings.Provider, loader *IndexLoader, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	items := loader.Load(ctx)
	if len(items) == 0 {
		return []Result{}, nil
	}

	vec, err := prov.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cannot embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector for query")
	}
	q := NormalizeL2(vec)

	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, Result{
			Name:       item.Name,
			Vector:     item.Vector,
			Similarity: Dot(q, item.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
