// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

type FilesCmd struct {
	Type    string `arg:"positional,required" help:"collection type, e.g. building or segment"`
	Bbox    string `arg:"--bbox,required" help:"xmin,ymin,xmax,ymax in decimal degrees"`
	Release string `arg:"--release" help:"release to query; defaults to the latest one"`
}

// files is the debug surface over the bbox index: it prints the data file
// URLs a query would open, without opening any of them.
func files(ctx context.Context, client *overture.Client, cmd *FilesCmd) error {
	box, err := parseBbox(cmd.Bbox)
	if err != nil {
		return err
	}
	urls, err := client.FilesInBbox(ctx, cmd.Type, box, cmd.Release)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if _, err := fmt.Fprintln(os.Stdout, u); err != nil {
			return err
		}
	}
	return nil
}
