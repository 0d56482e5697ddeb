// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package gers handles stable feature identifiers and the sharded
// registry that maps them to release data files.
package gers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

// A GERS id is a UUID-shaped string: 8-4-4-4-12 hexadecimal groups.
// google/uuid's Parse is deliberately not used here since it also accepts
// braced and urn:uuid: forms, which the registry treats as malformed.
var idPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// NormalizeID lowercases an id and validates its shape. Malformed ids are
// rejected here, before any network call happens.
func NormalizeID(id string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if !idPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q is not a GERS id", common.ErrInvalidArgument, id)
	}
	return normalized, nil
}
