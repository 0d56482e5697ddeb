// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package overture is a client for querying Overture Maps GeoParquet
// releases by stable GERS identifier or by bounding box, streaming decoded
// features without materializing whole datasets.
package overture

import (
	"context"
	"net/http"

	"github.com/brad-richardson/overturemaps-go/internal/backend"
	"github.com/brad-richardson/overturemaps-go/internal/catalog"
	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
	"github.com/brad-richardson/overturemaps-go/internal/spatial"
	"github.com/brad-richardson/overturemaps-go/internal/telemetry"
)

// Aliases so callers outside the module can name the core types.
type (
	Feature     = geo.Feature
	BoundingBox = geo.BoundingBox
	Config      = config.Config
)

// DefaultConfig points at the public Overture endpoints.
func DefaultConfig() Config { return config.Default() }

// Client answers id and bbox queries against a release. The backend
// handle inside it is shared by every query the client runs; Close is
// destructive to all in-flight queries, so callers only close once none
// are outstanding. Construct separate clients when isolation matters.
type Client struct {
	cfg      config.Config
	catalog  *catalog.Client
	index    *spatial.Index
	backends *backend.Selector
}

// New builds a client with a retrying HTTP transport.
func New(cfg Config) *Client {
	return NewWithHTTPClient(cfg, common.NewRetryableHTTPClient())
}

// NewWithHTTPClient builds a client around a caller-supplied HTTP client,
// which is how tests inject a mocked transport.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:      cfg,
		catalog:  catalog.NewClient(cfg.Catalog.CatalogURL, httpClient),
		index:    spatial.NewIndex(cfg.Catalog, cfg.S3, httpClient),
		backends: backend.NewSelector(cfg, httpClient),
	}
}

// LatestRelease resolves the name of the newest release from the catalog.
func (c *Client) LatestRelease(ctx context.Context) (string, error) {
	return c.catalog.Latest(ctx)
}

// FilesInBbox lists the data file URLs a bbox query over the given
// collection type would touch. Empty release means the latest one.
// Exposed for debugging and advanced callers.
func (c *Client) FilesInBbox(ctx context.Context, collectionType string, bbox BoundingBox, release string) ([]string, error) {
	if err := bbox.ValidateQuery(); err != nil {
		return nil, err
	}
	span, ctx := telemetry.SubSpanFromCtx(ctx)
	defer span.End()

	if release == "" {
		var err error
		release, err = c.catalog.Latest(ctx)
		if err != nil {
			return nil, err
		}
	}
	return c.index.FilesForBbox(ctx, collectionType, bbox, release)
}

// Close releases the shared backend handle. Destructive to in-flight
// queries; see the Client doc.
func (c *Client) Close() error {
	return c.backends.Close()
}
