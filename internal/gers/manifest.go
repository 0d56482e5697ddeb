// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package gers

import (
	"sort"

	"github.com/brad-richardson/overturemaps-go/internal/catalog"
)

// LocateShard finds the registry shard authoritative for a normalized id.
//
// The manifest is sorted ascending by max key, so shard i covers every key
// k with maxKey[i-1] < k <= maxKey[i] and shard 0 covers k <= maxKey[0].
// Returns ok=false when the key is greater than every max key, meaning no
// shard can hold it. O(log n) string comparisons, no I/O.
func LocateShard(manifest []catalog.ManifestEntry, key string) (catalog.ManifestEntry, bool) {
	i := sort.Search(len(manifest), func(i int) bool {
		return key <= manifest[i].MaxKey
	})
	if i == len(manifest) {
		return catalog.ManifestEntry{}, false
	}
	return manifest[i], true
}
