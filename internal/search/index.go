package search

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
)

// IndexedEmbedding is one row of the registry's embeddings index: an entry
// name and its precomputed vector.
type IndexedEmbedding struct {
	Name   string    `json:"name"`
	Vector []float32 `json:"vector"`
}

// EmbeddingsSource fetches the raw embeddings index document.
type EmbeddingsSource interface {
	FetchEmbeddings(ctx context.Context) ([]byte, error)
}

// IndexLoader fetches and decodes the embeddings index at most once and
// serves the memoized result afterwards. A failed fetch memoizes an empty
// index for the lifetime of the process; semantic search degrades to no
// results instead of surfacing the error on every query.
type IndexLoader struct {
	source EmbeddingsSource
	logger *log.Logger

	once  sync.Once
	items []IndexedEmbedding
}

// NewIndexLoader returns a loader backed by source. A nil logger falls back
// to the package default.
func NewIndexLoader(source EmbeddingsSource, logger *log.Logger) *IndexLoader {
	if logger == nil {
		logger = log.Default()
	}
	return &IndexLoader{source: source, logger: logger}
}

// Load returns the decoded index, fetching it on first use. Concurrent
// callers share a single fetch. The returned slice is shared and must not
// be mutated.
func (l *IndexLoader) Load(ctx context.Context) []IndexedEmbedding {
	l.once.Do(func() {
		data, err := l.source.FetchEmbeddings(ctx)
		if err != nil {
			l.logger.Debug("embeddings index unavailable", "err", err)
			return
		}
		items, err := decodeIndex(data)
		if err != nil {
			l.logger.Debug("embeddings index unreadable", "err", err)
			return
		}
		l.logger.Debug("embeddings index loaded", "entries", len(items))
		l.items = items
	})
	return l.items
}

// decodeIndex parses the index document and drops rows that carry no name
// or no vector.
func decodeIndex(data []byte) ([]IndexedEmbedding, error) {
	var raw []IndexedEmbedding
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]IndexedEmbedding, 0, len(raw))
	for _, item := range raw {
		if item.Name == "" || len(item.Vector) == 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
