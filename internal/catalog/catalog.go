// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package catalog fetches and caches the top-level catalog document that
// names the latest release and the sharded GERS registry manifest.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

// ManifestEntry points at one registry shard and the largest id it holds.
type ManifestEntry struct {
	ShardFile string
	MaxKey    string
}

// Catalog is the parsed catalog document. The manifest is sorted ascending
// by max key; that invariant is checked at parse time so lookups can
// binary search without re-validating.
type Catalog struct {
	LatestRelease string
	Manifest      []ManifestEntry
}

// Client fetches the catalog over HTTPS and memoizes parsed documents per
// URL. The catalog has no TTL upstream; call Refresh to bypass the memo.
type Client struct {
	catalogURL string
	httpClient *http.Client

	mu    sync.Mutex
	cache *lru.Cache[string, *Catalog]
}

func NewClient(catalogURL string, httpClient *http.Client) *Client {
	// the cache only ever holds a handful of catalog documents; the
	// bound exists so alternate endpoints in tests can't grow it forever
	c, _ := lru.New[string, *Catalog](8)
	return &Client{
		catalogURL: catalogURL,
		httpClient: httpClient,
		cache:      c,
	}
}

// Get returns the catalog, fetching it on first use.
func (c *Client) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache.Get(c.catalogURL); ok {
		return cached, nil
	}
	return c.fetchLocked(ctx)
}

// Refresh re-fetches the catalog regardless of what is cached.
func (c *Client) Refresh(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchLocked(ctx)
}

// Latest returns the name of the newest release.
func (c *Client) Latest(ctx context.Context) (string, error) {
	cat, err := c.Get(ctx)
	if err != nil {
		return "", err
	}
	return cat.LatestRelease, nil
}

// ShardURL resolves a manifest shard file against the catalog location.
// Absolute shard URLs are passed through untouched.
func (c *Client) ShardURL(entry ManifestEntry) string {
	ref, err := url.Parse(entry.ShardFile)
	if err != nil {
		return entry.ShardFile
	}
	if ref.IsAbs() {
		return entry.ShardFile
	}
	base, err := url.Parse(c.catalogURL)
	if err != nil {
		return entry.ShardFile
	}
	return base.ResolveReference(ref).String()
}

func (c *Client) fetchLocked(ctx context.Context) (*Catalog, error) {
	body, err := common.FetchBytes(ctx, c.httpClient, c.catalogURL)
	if err != nil {
		return nil, err
	}
	cat, err := parseCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("catalog at %s: %w", c.catalogURL, err)
	}
	log.Debugf("catalog fetched; latest release is %s with %d registry shards", cat.LatestRelease, len(cat.Manifest))
	c.cache.Add(c.catalogURL, cat)
	return cat, nil
}

func parseCatalog(body []byte) (*Catalog, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: catalog is not valid json", common.ErrSchema)
	}
	doc := gjson.ParseBytes(body)

	latest := doc.Get("latest_release")
	if latest.Type != gjson.String || latest.String() == "" {
		return nil, fmt.Errorf("%w: catalog missing latest_release", common.ErrSchema)
	}

	manifest := doc.Get("manifest")
	if !manifest.IsArray() {
		return nil, fmt.Errorf("%w: catalog missing manifest array", common.ErrSchema)
	}

	cat := &Catalog{LatestRelease: latest.String()}
	var parseErr error
	manifest.ForEach(func(_, entry gjson.Result) bool {
		shard := entry.Get("shard_file")
		maxKey := entry.Get("max_key")
		if shard.Type != gjson.String || maxKey.Type != gjson.String {
			parseErr = fmt.Errorf("%w: manifest entry missing shard_file or max_key", common.ErrSchema)
			return false
		}
		cat.Manifest = append(cat.Manifest, ManifestEntry{
			ShardFile: shard.String(),
			MaxKey:    maxKey.String(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	for i := 1; i < len(cat.Manifest); i++ {
		if cat.Manifest[i-1].MaxKey >= cat.Manifest[i].MaxKey {
			return nil, fmt.Errorf("%w: manifest not sorted ascending by max_key at index %d", common.ErrSchema, i)
		}
	}
	return cat, nil
}
