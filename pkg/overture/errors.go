// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package overture

import (
	"github.com/brad-richardson/overturemaps-go/internal/common"
)

// Error sentinels for errors.Is checks. Absence is never an error: lookups
// that find nothing return nil features or empty streams.
var (
	ErrInvalidArgument = common.ErrInvalidArgument
	ErrUpstream        = common.ErrUpstream
	ErrSchema          = common.ErrSchema
	ErrDecode          = common.ErrDecode
)
