package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

type stubProvider struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (p *stubProvider) ModelID() string { return "stub" }
func (p *stubProvider) Dim() int        { return 2 }

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	v, ok := p.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return v, nil
}

func indexSource(rows string) *stubSource {
	return &stubSource{data: []byte(rows)}
}

func TestSemantic_RanksByDotProduct(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[
		{"name": "y-axis", "vector": [0, 1]},
		{"name": "diagonal", "vector": [0.7071, 0.7071]},
		{"name": "x-axis", "vector": [1, 0]}
	]`), nil)
	prov := &stubProvider{vectors: map[string][]float32{"query": {1, 0}}}

	results, err := Semantic(context.Background(), prov, loader, "query", 0)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Name != "x-axis" || math.Abs(results[0].Similarity-1.0) > 1e-6 {
		t.Fatalf("unexpected top hit: %+v", results[0])
	}
	if len(results[0].Vector) != 2 || results[0].Vector[0] != 1 {
		t.Fatalf("indexed vector not carried through: %+v", results[0])
	}
	if results[1].Name != "diagonal" || results[2].Name != "y-axis" {
		t.Fatalf("unexpected order: %+v", results)
	}
}

func TestSemantic_TopKTruncates(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[
		{"name": "a", "vector": [1, 0]},
		{"name": "b", "vector": [0.9, 0]},
		{"name": "c", "vector": [0.8, 0]},
		{"name": "d", "vector": [0.7, 0]}
	]`), nil)
	prov := &stubProvider{vectors: map[string][]float32{"q": {1, 0}}}

	results, err := Semantic(context.Background(), prov, loader, "q", 2)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Zero falls back to the default count.
	loader2 := NewIndexLoader(indexSource(`[
		{"name": "a", "vector": [1, 0]},
		{"name": "b", "vector": [0.9, 0]},
		{"name": "c", "vector": [0.8, 0]},
		{"name": "d", "vector": [0.7, 0]}
	]`), nil)
	results, err = Semantic(context.Background(), prov, loader2, "q", 0)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	if len(results) != DefaultTopK {
		t.Fatalf("got %d results, want %d", len(results), DefaultTopK)
	}
}

func TestSemantic_TiesKeepIndexOrder(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[
		{"name": "first", "vector": [1, 0]},
		{"name": "second", "vector": [1, 0]},
		{"name": "third", "vector": [1, 0]}
	]`), nil)
	prov := &stubProvider{vectors: map[string][]float32{"q": {1, 0}}}

	results, err := Semantic(context.Background(), prov, loader, "q", 3)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if results[i].Name != name {
			t.Fatalf("tie order broken at %d: got %+v", i, results)
		}
	}
}

func TestSemantic_EmptyIndexYieldsNoResults(t *testing.T) {
	loader := NewIndexLoader(&stubSource{err: errors.New("registry unreachable")}, nil)
	prov := &stubProvider{err: errors.New("must not be called")}

	results, err := Semantic(context.Background(), prov, loader, "anything", 3)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %+v, want no results", results)
	}
	if prov.calls != 0 {
		t.Fatalf("provider consulted %d times for an empty index", prov.calls)
	}
}

func TestSemantic_ProviderError(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[{"name": "a", "vector": [1, 0]}]`), nil)
	prov := &stubProvider{err: errors.New("quota exceeded")}

	if _, err := Semantic(context.Background(), prov, loader, "q", 3); err == nil {
		t.Fatal("expected embed error to surface")
	}
}

func TestSemantic_QueryVectorNormalized(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[{"name": "a", "vector": [1, 0]}]`), nil)
	prov := &stubProvider{vectors: map[string][]float32{"q": {2, 0}}}

	results, err := Semantic(context.Background(), prov, loader, "q", 1)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	if math.Abs(results[0].Similarity-1.0) > 1e-6 {
		t.Fatalf("query not normalized: %+v", results[0])
	}
}

func TestSemantic_ToleratesShorterIndexVectors(t *testing.T) {
	loader := NewIndexLoader(indexSource(`[{"name": "short", "vector": [1]}]`), nil)
	prov := &stubProvider{vectors: map[string][]float32{"q": {1, 0, 0}}}

	results, err := Semantic(context.Background(), prov, loader, "q", 1)
	if err != nil {
		t.Fatalf("Semantic: %v", err)
	}
	if math.Abs(results[0].Similarity-1.0) > 1e-6 {
		t.Fatalf("dot over shared prefix expected: %+v", results[0])
	}
}
