// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package geo

import (
	"github.com/peterstace/simplefeatures/geom"
)

// DecodeWKB converts a well-known-binary blob into a geometry. A parse
// failure yields ok=false rather than an error so streaming callers can
// skip the row instead of aborting the whole stream; the single-feature
// lookup path promotes the false into a hard error because there is
// exactly one expected result there.
func DecodeWKB(data []byte) (geom.Geometry, bool) {
	if len(data) == 0 {
		return geom.Geometry{}, false
	}
	g, err := geom.UnmarshalWKB(data)
	if err != nil {
		return geom.Geometry{}, false
	}
	return g, true
}

// GeometryBounds returns the envelope of a geometry as a BoundingBox, used
// as a fallback bbox filter for rows whose files carry no bbox column.
func GeometryBounds(g geom.Geometry) (BoundingBox, bool) {
	min, max, ok := g.Envelope().MinMaxXYs()
	if !ok {
		return BoundingBox{}, false
	}
	return BoundingBox{XMin: min.X, YMin: min.Y, XMax: max.X, YMax: max.Y}, true
}
