// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package common

import "errors"

// Sentinel errors shared across the module. Callers wrap these with
// fmt.Errorf("...: %w", err) so errors.Is works at the public surface.
var (
	// ErrInvalidArgument is returned for malformed ids or bounding boxes,
	// always before any network traffic.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstream is returned when the catalog, index or a data file
	// cannot be reached.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrSchema is returned when a remote file is missing expected fields.
	ErrSchema = errors.New("unexpected schema")

	// ErrDecode is returned when a geometry blob cannot be decoded and
	// there is no other row to fall back on.
	ErrDecode = errors.New("geometry decode failed")
)
