// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
	log "github.com/sirupsen/logrus"

	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

type BboxCmd struct {
	Type    string `arg:"positional,required" help:"collection type, e.g. building or segment"`
	Bbox    string `arg:"--bbox,required" help:"xmin,ymin,xmax,ymax in decimal degrees"`
	Limit   int    `arg:"--limit" help:"maximum number of features to return"`
	Release string `arg:"--release" help:"release to query; defaults to the latest one"`
	// geojsonseq prints one feature per line instead of a collection
	Format string `arg:"--format" default:"geojsonseq" help:"geojsonseq or geojson"`
}

func bbox(ctx context.Context, client *overture.Client, cmd *BboxCmd) error {
	box, err := parseBbox(cmd.Bbox)
	if err != nil {
		return err
	}

	stream, err := client.QueryBbox(ctx, cmd.Type, box, overture.QueryOptions{
		Limit:   cmd.Limit,
		Release: cmd.Release,
	})
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close() }()

	switch cmd.Format {
	case "geojson":
		return printCollection(stream)
	case "geojsonseq":
		return printSequence(stream)
	default:
		return fmt.Errorf("unknown format %q", cmd.Format)
	}
}

// printSequence writes features as they arrive, one JSON document per
// line, so huge results never accumulate in memory.
func printSequence(stream *overture.FeatureReader) error {
	count := 0
	for {
		f, err := stream.Read()
		if err == io.EOF {
			log.Debugf("streamed %d features", count)
			return nil
		}
		if err != nil {
			return err
		}
		if err := printJSON(f.AsGeoJSON()); err != nil {
			return err
		}
		count++
	}
}

func printCollection(stream *overture.FeatureReader) error {
	collection := geom.GeoJSONFeatureCollection{}
	for {
		f, err := stream.Read()
		if err == io.EOF {
			return printJSON(collection)
		}
		if err != nil {
			return err
		}
		collection.Features = append(collection.Features, f.AsGeoJSON())
	}
}

func parseBbox(raw string) (overture.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	vals := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return overture.BoundingBox{}, fmt.Errorf("parsing bbox %q: %w", raw, err)
		}
		vals = append(vals, v)
	}
	if len(vals) != 4 {
		return overture.BoundingBox{}, fmt.Errorf("bbox needs 4 comma-separated values, got %d", len(vals))
	}
	return overture.BoundingBox{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
}
