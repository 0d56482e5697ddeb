// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

type ReleaseCmd struct{}

func release(ctx context.Context, client *overture.Client) error {
	latest, err := client.LatestRelease(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, latest)
	return err
}
