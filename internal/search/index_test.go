package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubSource struct {
	data    []byte
	err     error
	delay   time.Duration
	fetches atomic.Int32
}

func (s *stubSource) FetchEmbeddings(ctx context.Context) ([]byte, error) {
	s.fetches.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.data, s.err
}

func TestIndexLoader_Load(t *testing.T) {
	src := &stubSource{data: []byte(`[
		{"name": "use-debounce", "vector": [0.1, 0.2]},
		{"name": "data-table", "vector": [0.3, 0.4]}
	]`)}
	loader := NewIndexLoader(src, nil)

	items := loader.Load(context.Background())
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "use-debounce" || len(items[0].Vector) != 2 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestIndexLoader_DropsInvalidRows(t *testing.T) {
	src := &stubSource{data: []byte(`[
		{"name": "good", "vector": [1]},
		{"name": "", "vector": [1]},
		{"name": "no-vector", "vector": []},
		{"name": "also-good", "vector": [0.5]}
	]`)}
	loader := NewIndexLoader(src, nil)

	items := loader.Load(context.Background())
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	if items[0].Name != "good" || items[1].Name != "also-good" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestIndexLoader_FetchErrorMemoizesEmpty(t *testing.T) {
	src := &stubSource{err: errors.New("network down")}
	loader := NewIndexLoader(src, nil)

	for i := 0; i < 3; i++ {
		if items := loader.Load(context.Background()); len(items) != 0 {
			t.Fatalf("expected empty index, got %+v", items)
		}
	}
	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("got %d fetches, want 1 (failure must be memoized)", got)
	}
}

func TestIndexLoader_BadJSONMemoizesEmpty(t *testing.T) {
	src := &stubSource{data: []byte("{not an array")}
	loader := NewIndexLoader(src, nil)

	if items := loader.Load(context.Background()); len(items) != 0 {
		t.Fatalf("expected empty index, got %+v", items)
	}
	if items := loader.Load(context.Background()); len(items) != 0 {
		t.Fatalf("expected empty index on reuse, got %+v", items)
	}
	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("got %d fetches, want 1", got)
	}
}

func TestIndexLoader_ConcurrentLoadFetchesOnce(t *testing.T) {
	src := &stubSource{
		data:  []byte(`[{"name": "a", "vector": [1]}]`),
		delay: 20 * time.Millisecond,
	}
	loader := NewIndexLoader(src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if items := loader.Load(context.Background()); len(items) != 1 {
				t.Errorf("got %d items, want 1", len(items))
			}
		}()
	}
	wg.Wait()

	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("got %d fetches, want 1 (concurrent loads must share one)", got)
	}
}
