// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package geo

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// wkbPoint builds a little-endian WKB point.
func wkbPoint(x, y float64) []byte {
	buf := make([]byte, 21)
	buf[0] = 1 // little endian
	binary.LittleEndian.PutUint32(buf[1:], 1)
	binary.LittleEndian.PutUint64(buf[5:], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[13:], math.Float64bits(y))
	return buf
}

func TestDecodeWKBPoint(t *testing.T) {
	g, ok := DecodeWKB(wkbPoint(1, 2))
	require.True(t, ok)

	encoded, err := json.Marshal(g)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Point","coordinates":[1,2]}`, string(encoded))
}

func TestDecodeWKBRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{},
		{0xde, 0xad, 0xbe, 0xef},
		wkbPoint(1, 2)[:10], // truncated
	} {
		_, ok := DecodeWKB(data)
		require.False(t, ok)
	}
}

func TestGeometryBounds(t *testing.T) {
	g, ok := DecodeWKB(wkbPoint(-122.4, 37.8))
	require.True(t, ok)

	b, ok := GeometryBounds(g)
	require.True(t, ok)
	require.InDelta(t, -122.4, b.XMin, 1e-9)
	require.InDelta(t, 37.8, b.YMin, 1e-9)
	require.InDelta(t, -122.4, b.XMax, 1e-9)
	require.InDelta(t, 37.8, b.YMax, 1e-9)
}
