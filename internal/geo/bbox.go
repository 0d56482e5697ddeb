// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

// BoundingBox is an axis-aligned rectangle in WGS-84 coordinates.
//
// Coordinates are in decimal degrees.
type BoundingBox struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// NewBoundingBox builds a box from a (xmin, ymin, xmax, ymax) slice as it
// appears in index files and CLI arguments.
func NewBoundingBox(vals []float64) (BoundingBox, error) {
	if len(vals) != 4 {
		return BoundingBox{}, fmt.Errorf("%w: bbox needs 4 values, got %d", common.ErrInvalidArgument, len(vals))
	}
	return BoundingBox{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
}

// Slice returns the box as a (xmin, ymin, xmax, ymax) 4-tuple.
func (b BoundingBox) Slice() [4]float64 {
	return [4]float64{b.XMin, b.YMin, b.XMax, b.YMax}
}

// ValidateQuery checks the ordering and geographic range constraints that
// apply to query boxes. Data boxes from index files are not held to the
// range constraint.
func (b BoundingBox) ValidateQuery() error {
	for _, v := range b.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bbox values must be finite", common.ErrInvalidArgument)
		}
	}
	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		return fmt.Errorf("%w: bbox min must be strictly less than max, got %v", common.ErrInvalidArgument, b.Slice())
	}
	if b.XMin < -180 || b.XMax > 180 || b.YMin < -90 || b.YMax > 90 {
		return fmt.Errorf("%w: bbox %v outside [-180,180]x[-90,90]", common.ErrInvalidArgument, b.Slice())
	}
	return nil
}

// Intersects reports whether two boxes overlap with positive area.
// Rectangles that merely touch at an edge or corner do not overlap.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.XMin < other.XMax && b.XMax > other.XMin &&
		b.YMin < other.YMax && b.YMax > other.YMin
}
