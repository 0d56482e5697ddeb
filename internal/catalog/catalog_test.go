// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

const catalogURL = "https://example.com/catalog/catalog.json"

const validCatalog = `{
	"latest_release": "2025-08-20.0",
	"manifest": [
		{"shard_file": "registry/shard-0.parquet", "max_key": "3000"},
		{"shard_file": "registry/shard-1.parquet", "max_key": "6000"},
		{"shard_file": "registry/shard-2.parquet", "max_key": "9000"}
	]
}`

func TestGetParsesCatalog(t *testing.T) {
	httpClient, _ := common.NewMockedClient(true, map[string]common.MockResponse{
		catalogURL: {Body: validCatalog, ContentType: "application/json"},
	})
	client := NewClient(catalogURL, httpClient)

	cat, err := client.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-08-20.0", cat.LatestRelease)
	require.Len(t, cat.Manifest, 3)
	require.Equal(t, ManifestEntry{ShardFile: "registry/shard-1.parquet", MaxKey: "6000"}, cat.Manifest[1])
}

func TestGetIsMemoized(t *testing.T) {
	httpClient, transport := common.NewMockedClient(true, map[string]common.MockResponse{
		catalogURL: {Body: validCatalog, ContentType: "application/json"},
	})
	client := NewClient(catalogURL, httpClient)

	_, err := client.Get(context.Background())
	require.NoError(t, err)
	_, err = client.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, transport.RequestCount())

	// Refresh bypasses the memo
	_, err = client.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, transport.RequestCount())
}

func TestGetUpstreamFailure(t *testing.T) {
	httpClient, _ := common.NewMockedClient(true, map[string]common.MockResponse{
		catalogURL: {Body: "gone", StatusCode: 404},
	})
	client := NewClient(catalogURL, httpClient)

	_, err := client.Get(context.Background())
	require.ErrorIs(t, err, common.ErrUpstream)
}

func TestParseCatalogRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":              `{"latest_release": `,
		"missing release":       `{"manifest": []}`,
		"empty release":         `{"latest_release": "", "manifest": []}`,
		"release not a string":  `{"latest_release": 42, "manifest": []}`,
		"missing manifest":      `{"latest_release": "2025-08-20.0"}`,
		"manifest not an array": `{"latest_release": "2025-08-20.0", "manifest": {}}`,
		"entry missing max_key": `{"latest_release": "2025-08-20.0", "manifest": [{"shard_file": "a.parquet"}]}`,
		"unsorted manifest": `{"latest_release": "2025-08-20.0", "manifest": [
			{"shard_file": "a.parquet", "max_key": "6000"},
			{"shard_file": "b.parquet", "max_key": "3000"}
		]}`,
		"duplicate max_key": `{"latest_release": "2025-08-20.0", "manifest": [
			{"shard_file": "a.parquet", "max_key": "3000"},
			{"shard_file": "b.parquet", "max_key": "3000"}
		]}`,
	}
	for name, body := range cases {
		_, err := parseCatalog([]byte(body))
		require.ErrorIs(t, err, common.ErrSchema, "case %q", name)
	}
}

func TestShardURL(t *testing.T) {
	client := NewClient(catalogURL, nil)

	require.Equal(t,
		"https://example.com/catalog/registry/shard-0.parquet",
		client.ShardURL(ManifestEntry{ShardFile: "registry/shard-0.parquet"}))

	// absolute URLs pass through untouched
	require.Equal(t,
		"https://other.example.com/shard.parquet",
		client.ShardURL(ManifestEntry{ShardFile: "https://other.example.com/shard.parquet"}))
}
