package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/graftkit/graft/internal/registry"
	"github.com/graftkit/graft/internal/search"
)

type fakeProvider struct {
	vectors map[string][]float32
}

func (p *fakeProvider) ModelID() string { return "fake" }
func (p *fakeProvider) Dim() int        { return 2 }

func (p *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := p.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no fake vector for %q", text)
	}
	return v, nil
}

func TestBuild_SortedAndNormalized(t *testing.T) {
	entries := []registry.Entry{
		{Name: "zebra", Description: "last alphabetically"},
		{Name: "alpha"},
	}
	prov := &fakeProvider{vectors: map[string][]float32{
		"name: zebra\ndescription: last alphabetically": {3, 4},
		"name: alpha": {0, 2},
	}}

	items, err := Build(context.Background(), prov, entries)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "alpha" || items[1].Name != "zebra" {
		t.Fatalf("items not sorted by name: %+v", items)
	}
	for _, item := range items {
		var sum float64
		for _, x := range item.Vector {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-6 {
			t.Fatalf("%s not unit length: %v", item.Name, item.Vector)
		}
	}
}

func TestBuild_DimDriftFails(t *testing.T) {
	entries := []registry.Entry{{Name: "a"}, {Name: "b"}}
	prov := &fakeProvider{vectors: map[string][]float32{
		"name: a": {1, 0},
		"name: b": {1, 0, 0},
	}}

	if _, err := Build(context.Background(), prov, entries); err == nil {
		t.Fatal("expected dim drift error")
	}
}

func TestBuild_NoEntries(t *testing.T) {
	if _, err := Build(context.Background(), &fakeProvider{}, nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestCanonicalText(t *testing.T) {
	got := CanonicalText(registry.Entry{Name: " use-debounce ", Description: " Debounce a value "})
	want := "name: use-debounce\ndescription: Debounce a value"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	got = CanonicalText(registry.Entry{Name: "bare"})
	if got != "name: bare" {
		t.Fatalf("got %q", got)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "embeddings.json")
	items := []search.IndexedEmbedding{
		{Name: "a", Vector: []float32{1, 0}},
		{Name: "b", Vector: []float32{0, 1}},
	}

	if err := Write(path, items); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got []search.IndexedEmbedding
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("round trip lost data: %+v", got)
	}

	// No stray temp files next to the output.
	siblings, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(siblings) != 1 {
		t.Fatalf("unexpected leftovers: %v", siblings)
	}
}
