// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package gers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/internal/catalog"
)

func testManifest() []catalog.ManifestEntry {
	return []catalog.ManifestEntry{
		{ShardFile: "a.parquet", MaxKey: "3000"},
		{ShardFile: "b.parquet", MaxKey: "6000"},
		{ShardFile: "c.parquet", MaxKey: "9000"},
	}
}

func TestLocateShard(t *testing.T) {
	manifest := testManifest()

	entry, ok := LocateShard(manifest, "5000")
	require.True(t, ok)
	require.Equal(t, "b.parquet", entry.ShardFile)
}

func TestLocateShardKeyEqualToMaxKey(t *testing.T) {
	manifest := testManifest()

	// a key equal to a shard's max key belongs to that shard
	entry, ok := LocateShard(manifest, "9000")
	require.True(t, ok)
	require.Equal(t, "c.parquet", entry.ShardFile)

	entry, ok = LocateShard(manifest, "3000")
	require.True(t, ok)
	require.Equal(t, "a.parquet", entry.ShardFile)
}

func TestLocateShardKeyPastLastShard(t *testing.T) {
	_, ok := LocateShard(testManifest(), "9500")
	require.False(t, ok)
}

func TestLocateShardSmallKeysLandInFirstShard(t *testing.T) {
	entry, ok := LocateShard(testManifest(), "0001")
	require.True(t, ok)
	require.Equal(t, "a.parquet", entry.ShardFile)
}

func TestLocateShardEmptyManifest(t *testing.T) {
	_, ok := LocateShard(nil, "5000")
	require.False(t, ok)
}
