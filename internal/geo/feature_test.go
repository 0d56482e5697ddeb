// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsGeoJSON(t *testing.T) {
	g, ok := DecodeWKB(wkbPoint(1, 2))
	require.True(t, ok)

	f := &Feature{
		ID:         "08f2a2c0-77c2-4bfa-9630-3b116cbed7a5",
		Geometry:   g,
		Properties: map[string]any{"height": 12.5},
	}

	encoded, err := json.Marshal(f.AsGeoJSON())
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type": "Feature",
		"id": "08f2a2c0-77c2-4bfa-9630-3b116cbed7a5",
		"geometry": {"type": "Point", "coordinates": [1, 2]},
		"properties": {"height": 12.5}
	}`, string(encoded))
}

func TestAsGeoJSONOmitsEmptyID(t *testing.T) {
	g, ok := DecodeWKB(wkbPoint(0, 0))
	require.True(t, ok)

	encoded, err := json.Marshal((&Feature{Geometry: g}).AsGeoJSON())
	require.NoError(t, err)
	require.NotContains(t, string(encoded), `"id"`)
}
