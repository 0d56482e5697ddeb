// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package spatial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
)

const indexBaseURL = "https://example.com/index"

const testIndex = `{
	"entries": [
		{
			"collection": "building",
			"kind": "Feature",
			"bbox": [-10, -10, 0, 0],
			"assets": {"https": "https://data.example.com/building-west.parquet"}
		},
		{
			"collection": "building",
			"kind": "Feature",
			"bbox": [0.5, 0.5, 10, 10],
			"assets": {"s3": "s3://overture-data/building-east.parquet"}
		},
		{
			"collection": "segment",
			"kind": "Feature",
			"bbox": [-10, -10, 10, 10],
			"assets": {"https": "https://data.example.com/segment.parquet"}
		},
		{
			"collection": "building",
			"kind": "Metadata",
			"bbox": [-10, -10, 10, 10],
			"assets": {"https": "https://data.example.com/building-meta.json"}
		},
		{
			"collection": "building",
			"kind": "Feature",
			"bbox": [50, 50, 60, 60],
			"assets": {"https": "https://data.example.com/building-far.parquet"}
		}
	]
}`

func testS3Config() config.S3Config {
	return config.S3Config{Endpoint: "s3.us-west-2.amazonaws.com", Region: "us-west-2", SSL: true}
}

func testIndexClient(t *testing.T, body string) (*Index, *common.MockTransport) {
	t.Helper()
	httpClient, transport := common.NewMockedClient(true, map[string]common.MockResponse{
		indexBaseURL + "/2025-08-20.0/index.json": {Body: body, ContentType: "application/json"},
	})
	idx := NewIndex(config.CatalogConfig{IndexBaseURL: indexBaseURL}, testS3Config(), httpClient)
	return idx, transport
}

func TestFilesForBboxFiltersByCollectionAndOverlap(t *testing.T) {
	idx, _ := testIndexClient(t, testIndex)

	urls, err := idx.FilesForBbox(context.Background(), "building",
		geo.BoundingBox{XMin: -5, YMin: -5, XMax: 5, YMax: 5}, "2025-08-20.0")
	require.NoError(t, err)

	// both overlapping building files in index row order; the segment
	// entry, the metadata sidecar, and the far-away file are all excluded
	require.Equal(t, []string{
		"https://data.example.com/building-west.parquet",
		"https://overture-data.s3.us-west-2.amazonaws.com/building-east.parquet",
	}, urls)
}

func TestFilesForBboxTouchingIsNotOverlap(t *testing.T) {
	idx, _ := testIndexClient(t, testIndex)

	// query shares only the corner point (0,0) with the west file and the
	// corner (0.5,0.5) with the east file
	urls, err := idx.FilesForBbox(context.Background(), "building",
		geo.BoundingBox{XMin: 0, YMin: 0, XMax: 0.5, YMax: 0.5}, "2025-08-20.0")
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestFilesForBboxEmptyResultIsNotAnError(t *testing.T) {
	idx, _ := testIndexClient(t, testIndex)

	urls, err := idx.FilesForBbox(context.Background(), "building",
		geo.BoundingBox{XMin: 100, YMin: 20, XMax: 110, YMax: 30}, "2025-08-20.0")
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestFilesForBboxMemoizesIndexPerRelease(t *testing.T) {
	idx, transport := testIndexClient(t, testIndex)

	for i := 0; i < 3; i++ {
		_, err := idx.FilesForBbox(context.Background(), "segment",
			geo.BoundingBox{XMin: -1, YMin: -1, XMax: 1, YMax: 1}, "2025-08-20.0")
		require.NoError(t, err)
	}
	require.Equal(t, 1, transport.RequestCount())
}

func TestFilesForBboxUpstreamFailure(t *testing.T) {
	httpClient, _ := common.NewMockedClient(true, map[string]common.MockResponse{})
	idx := NewIndex(config.CatalogConfig{IndexBaseURL: indexBaseURL}, testS3Config(), httpClient)

	_, err := idx.FilesForBbox(context.Background(), "building",
		geo.BoundingBox{XMin: -1, YMin: -1, XMax: 1, YMax: 1}, "2025-08-20.0")
	require.ErrorIs(t, err, common.ErrUpstream)
}

func TestFilesForBboxBadIndexDocument(t *testing.T) {
	idx, _ := testIndexClient(t, `{"entries": [{`)

	_, err := idx.FilesForBbox(context.Background(), "building",
		geo.BoundingBox{XMin: -1, YMin: -1, XMax: 1, YMax: 1}, "2025-08-20.0")
	require.ErrorIs(t, err, common.ErrSchema)
}

func TestResolveAssetPrefersHTTPS(t *testing.T) {
	u, ok := ResolveAsset(map[string]string{
		"https": "https://data.example.com/file.parquet",
		"s3":    "s3://bucket/file.parquet",
	}, testS3Config())
	require.True(t, ok)
	require.Equal(t, "https://data.example.com/file.parquet", u)
}

func TestResolveAssetFallsBackToS3(t *testing.T) {
	u, ok := ResolveAsset(map[string]string{
		"s3": "s3://overture-data/release/file.parquet",
	}, testS3Config())
	require.True(t, ok)
	require.Equal(t, "https://overture-data.s3.us-west-2.amazonaws.com/release/file.parquet", u)

	_, ok = ResolveAsset(map[string]string{}, testS3Config())
	require.False(t, ok)
}

func TestSplitS3URL(t *testing.T) {
	bucket, key, err := SplitS3URL("s3://overture-data/release/file.parquet")
	require.NoError(t, err)
	require.Equal(t, "overture-data", bucket)
	require.Equal(t, "release/file.parquet", key)

	_, _, err = SplitS3URL("https://example.com/file.parquet")
	require.Error(t, err)
}
