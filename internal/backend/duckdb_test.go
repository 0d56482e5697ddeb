// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

func TestClassifyQueryError(t *testing.T) {
	schemaErrs := []error{
		errors.New(`Binder Error: Referenced column "bbox" not found`),
		errors.New("Conversion Error: Could not convert string"),
		errors.New("Invalid Input Error: No magic bytes found"),
	}
	for _, err := range schemaErrs {
		classified := classifyQueryError(err, "https://example.com/f.parquet")
		require.ErrorIs(t, classified, common.ErrSchema, "for %v", err)
	}

	upstream := classifyQueryError(errors.New("IO Error: Connection error"), "https://example.com/f.parquet")
	require.ErrorIs(t, upstream, common.ErrUpstream)
	require.Contains(t, upstream.Error(), "https://example.com/f.parquet")
}
