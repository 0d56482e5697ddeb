// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

func TestParseBbox(t *testing.T) {
	box, err := parseBbox("-122.5, 37.7, -122.3, 37.9")
	require.NoError(t, err)
	require.Equal(t, overture.BoundingBox{XMin: -122.5, YMin: 37.7, XMax: -122.3, YMax: 37.9}, box)
}

func TestParseBboxRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{
		"",
		"1,2,3",
		"1,2,3,4,5",
		"a,b,c,d",
		"1;2;3;4",
	} {
		_, err := parseBbox(raw)
		require.Error(t, err, "expected rejection of %q", raw)
	}
}
