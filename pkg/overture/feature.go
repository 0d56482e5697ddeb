// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package overture

import (
	"context"
	"fmt"
	"net/url"

	"github.com/brad-richardson/overturemaps-go/internal/backend"
	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
	"github.com/brad-richardson/overturemaps-go/internal/gers"
	"github.com/brad-richardson/overturemaps-go/internal/telemetry"
)

// Metadata is the registry's record for one feature: where it lives in
// the current release and its lifecycle information.
type Metadata struct {
	// path of the data file holding the feature, relative to the
	// release root unless absolute
	Filepath string
	// the feature's covering rectangle as recorded by the registry
	Bbox *BoundingBox
	// registry version counter for the feature
	Version int64
	// lifecycle timestamps, as recorded (empty when the registry has none)
	ValidFrom string
	ValidTo   string
}

// GetFeature fetches a single feature by GERS id. Returns (nil, nil) when
// the id is unknown or the feature is absent from the current release.
// A malformed id fails before any network traffic. A row whose geometry
// is missing or undecodable is a hard error here: there is exactly one
// expected result, so nothing can be silently skipped.
func (c *Client) GetFeature(ctx context.Context, id string) (*Feature, error) {
	normalizedID, err := gers.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	span, ctx := telemetry.SubSpanFromCtx(ctx)
	defer span.End()

	shardRow, release, err := c.registryRow(ctx, normalizedID)
	if err != nil || shardRow == nil {
		return nil, err
	}
	filepath, ok := rowString(shardRow, "filepath")
	if !ok {
		// a null path means the feature is retired from this release
		return nil, nil
	}

	dataURL := c.dataFileURL(filepath, release)
	row, err := c.backends.Engine().RowByID(ctx, dataURL, normalizedID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	geometry, decoded := geo.DecodeWKB(row.GeometryBytes())
	if !decoded {
		return nil, fmt.Errorf("%w: feature %s in %s", common.ErrDecode, normalizedID, dataURL)
	}

	feature := &Feature{
		ID:         normalizedID,
		Geometry:   geometry,
		Properties: row.Properties(),
	}
	if box, has := row.Bbox(); has {
		feature.Bbox = &box
	}
	return feature, nil
}

// GetFeatureMetadata looks an id up in the registry without touching the
// data file. Returns (nil, nil) when the id is unknown or retired.
func (c *Client) GetFeatureMetadata(ctx context.Context, id string) (*Metadata, error) {
	normalizedID, err := gers.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	span, ctx := telemetry.SubSpanFromCtx(ctx)
	defer span.End()

	shardRow, _, err := c.registryRow(ctx, normalizedID)
	if err != nil || shardRow == nil {
		return nil, err
	}
	filepath, ok := rowString(shardRow, "filepath")
	if !ok {
		return nil, nil
	}

	meta := &Metadata{Filepath: filepath}
	if box, has := shardRow.Bbox(); has {
		meta.Bbox = &box
	}
	if version, has := rowInt(shardRow, "version"); has {
		meta.Version = version
	}
	meta.ValidFrom, _ = rowString(shardRow, "valid_from")
	meta.ValidTo, _ = rowString(shardRow, "valid_to")
	return meta, nil
}

// registryRow resolves the catalog, binary searches the manifest for the
// shard authoritative for the id, and fetches the id's row from it.
// A nil row with nil error means the registry has no entry.
func (c *Client) registryRow(ctx context.Context, normalizedID string) (backend.Row, string, error) {
	cat, err := c.catalog.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	entry, found := gers.LocateShard(cat.Manifest, normalizedID)
	if !found {
		return nil, cat.LatestRelease, nil
	}
	row, err := c.backends.Engine().RowByID(ctx, c.catalog.ShardURL(entry), normalizedID)
	if err != nil {
		return nil, "", err
	}
	return row, cat.LatestRelease, nil
}

// dataFileURL resolves a registry filepath: absolute URLs pass through,
// relative paths live under <data base>/<release>/.
func (c *Client) dataFileURL(filepath, release string) string {
	if parsed, err := url.Parse(filepath); err == nil && parsed.IsAbs() {
		return filepath
	}
	return fmt.Sprintf("%s/%s/%s", c.cfg.Data.BaseURL, release, filepath)
}

func rowString(row backend.Row, key string) (string, bool) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	case []byte:
		if len(s) == 0 {
			return "", false
		}
		return string(s), true
	}
	return fmt.Sprint(v), true
}

func rowInt(row backend.Row, key string) (int64, bool) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
