package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	catalogFile    = "registry.json"
	embeddingsFile = "embeddings.json"

	// maxFetchBytes caps any single registry response.
	maxFetchBytes = 4 << 20

	payloadCacheSize = 256
)

// Client fetches the catalog, entry payloads and the embeddings document
// from one registry base URL. Payload fetches are cached for the lifetime
// of the client, so one run never downloads the same file twice.
type Client struct {
	base     string
	http     *http.Client
	logger   *log.Logger
	payloads *lru.Cache[string, []byte]

	retryAttempts int
	retryDelay    time.Duration
}

// NewClient returns a client for the registry at base.
func NewClient(base string, logger *log.Logger) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("registry URL is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid registry URL %q", base)
	}
	cache, err := lru.New[string, []byte](payloadCacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		base:          base,
		http:          &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
		payloads:      cache,
		retryAttempts: 3,
		retryDelay:    time.Second,
	}, nil
}

// BaseURL returns the registry base the client was built with.
func (c *Client) BaseURL() string { return c.base }

// FetchCatalog downloads and validates the registry listing. Records that
// fail validation are dropped with a debug log; the valid rest is returned.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	data, err := c.fetch(ctx, catalogFile)
	if err != nil {
		return nil, err
	}
	cat, rejected, err := DecodeCatalog(data)
	if err != nil {
		return nil, err
	}
	for _, verr := range rejected {
		c.logger.Debug("dropping invalid catalog record", "reason", verr)
	}
	c.logger.Debug("catalog fetched", "entries", len(cat.Entries), "rejected", len(rejected))
	return cat, nil
}

// FetchPayload downloads the file behind a catalog entry.
func (c *Client) FetchPayload(ctx context.Context, e *Entry) ([]byte, error) {
	if e.Path == "" {
		return nil, fmt.Errorf("entry %q has no payload path", e.Name)
	}
	if b, ok := c.payloads.Get(e.Path); ok {
		c.logger.Debug("payload cache hit", "path", e.Path)
		return b, nil
	}
	data, err := c.fetch(ctx, e.Path)
	if err != nil {
		return nil, err
	}
	c.payloads.Add(e.Path, data)
	return data, nil
}

// FetchEmbeddings returns the raw embeddings document published next to
// the catalog. Decoding is left to the search index loader.
func (c *Client) FetchEmbeddings(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, embeddingsFile)
}

// fetch GETs <base>/<path>, retrying transient failures with backoff.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	u := c.base + "/" + strings.TrimLeft(path, "/")

	var data []byte
	err := retry(ctx, c.retryAttempts, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "graft-cli")

		resp, err := c.http.Do(req)
		if err != nil {
			return &RetryableError{Err: fmt.Errorf("registry request failed: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &RetryableError{Err: fmt.Errorf("registry request failed: %s (%s)", resp.Status, u)}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("registry request failed: %s (%s)", resp.Status, u)
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
		if err != nil {
			return &RetryableError{Err: fmt.Errorf("registry read failed: %w", err)}
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched", "url", u, "bytes", len(data))
	return data, nil
}
