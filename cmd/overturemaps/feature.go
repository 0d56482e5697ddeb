// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/peterstace/simplefeatures/geom"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

type FeatureCmd struct {
	IDs      []string `arg:"positional,required" help:"GERS ids to fetch"`
	Metadata bool     `arg:"--metadata" help:"print registry metadata instead of the full feature"`
	// how many ids to fetch concurrently
	Parallel int `arg:"--parallel" default:"4"`
}

func feature(ctx context.Context, client *overture.Client, cmd *FeatureCmd) error {
	if cmd.Metadata {
		return featureMetadata(ctx, client, cmd.IDs)
	}

	var errorGroup errgroup.Group
	errorGroup.SetLimit(cmd.Parallel)

	// results land in the slice by index so no mutex is needed and
	// output order matches the requested ids
	features := make([]*overture.Feature, len(cmd.IDs))
	for i, id := range cmd.IDs {
		errorGroup.Go(func() error {
			f, err := client.GetFeature(ctx, id)
			if err != nil {
				return err
			}
			features[i] = f
			return nil
		})
	}
	if err := errorGroup.Wait(); err != nil {
		return err
	}

	collection := geom.GeoJSONFeatureCollection{}
	for i, f := range cmd.IDs {
		if features[i] == nil {
			log.Warnf("no feature found for %s", f)
			continue
		}
		collection.Features = append(collection.Features, features[i].AsGeoJSON())
	}
	return printJSON(collection)
}

func featureMetadata(ctx context.Context, client *overture.Client, ids []string) error {
	for _, id := range ids {
		meta, err := client.GetFeatureMetadata(ctx, id)
		if err != nil {
			return err
		}
		if meta == nil {
			log.Warnf("no registry entry for %s", id)
			continue
		}
		if err := printJSON(map[string]any{"id": id, "metadata": meta}); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(encoded))
	return err
}
