// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package geo

import (
	"github.com/peterstace/simplefeatures/geom"
)

// Feature is one decoded geographic feature from a release data file.
type Feature struct {
	// GERS id, empty if the row carried none
	ID string
	// decoded geometry
	Geometry geom.Geometry
	// all row columns except the geometry and bbox ones
	Properties map[string]any
	// the row's own bbox, when the file carries a bbox column
	Bbox *BoundingBox
}

// AsGeoJSON converts the feature into a marshalable GeoJSON feature.
func (f *Feature) AsGeoJSON() geom.GeoJSONFeature {
	gj := geom.GeoJSONFeature{
		Geometry:   f.Geometry,
		Properties: f.Properties,
	}
	if f.ID != "" {
		gj.ID = f.ID
	}
	return gj
}
