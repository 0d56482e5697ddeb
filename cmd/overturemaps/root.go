// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"

	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/telemetry"
	"github.com/brad-richardson/overturemaps-go/pkg/overture"
)

type Args struct {
	// Subcommands that can be run
	Feature *FeatureCmd `arg:"subcommand:feature" help:"fetch features by GERS id"`
	Bbox    *BboxCmd    `arg:"subcommand:bbox" help:"stream features overlapping a bounding box"`
	Files   *FilesCmd   `arg:"subcommand:files" help:"list the data files a bbox query would touch"`
	Release *ReleaseCmd `arg:"subcommand:release" help:"print the latest release name"`

	config.CatalogConfig
	config.DataConfig
	config.S3Config
	config.BackendConfig

	LogLevel     string `arg:"--log-level" default:"INFO"` // the log level to use for the cli logger
	UseOtel      bool   `arg:"--use-otel"`                 // Enable tracing
	OtelEndpoint string `arg:"--otel-endpoint" help:"OpenTelemetry endpoint"`
}

// ToStructuredConfig converts the args to a structured config
// that can be used for more config isolation
func (a Args) ToStructuredConfig() config.Config {
	return config.Config{
		Catalog: a.CatalogConfig,
		Data:    a.DataConfig,
		S3:      a.S3Config,
		Backend: a.BackendConfig,
	}
}

type Runner struct {
	args Args
}

func NewRunner(cliArgs []string) Runner {
	args := Args{}
	const dummyBinaryName = "overturemaps" // some binary name must precede the args; it doesn't matter which
	os.Args = append([]string{dummyBinaryName}, cliArgs...)

	parser := arg.MustParse(&args)
	if parser.Subcommand() == nil {
		log.Error("no subcommand provided")
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return Runner{args: args}
}

func (r Runner) Run(ctx context.Context) error {
	level, err := log.ParseLevel(r.args.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", r.args.LogLevel, err)
	}
	log.SetLevel(level)

	if r.args.UseOtel || r.args.OtelEndpoint != "" {
		if r.args.OtelEndpoint == "" {
			r.args.OtelEndpoint = telemetry.DefaultTracingEndpoint
		}
		log.Infof("starting opentelemetry traces, exporting to %s", r.args.OtelEndpoint)
		if err := telemetry.InitTracer("overturemaps", r.args.OtelEndpoint); err != nil {
			return err
		}
		defer telemetry.Shutdown(ctx)
	}

	client := overture.New(r.args.ToStructuredConfig())
	defer func() {
		if err := client.Close(); err != nil {
			log.Errorf("error closing backend: %v", err)
		}
	}()

	switch {
	case r.args.Feature != nil:
		return feature(ctx, client, r.args.Feature)
	case r.args.Bbox != nil:
		return bbox(ctx, client, r.args.Bbox)
	case r.args.Files != nil:
		return files(ctx, client, r.args.Files)
	case r.args.Release != nil:
		return release(ctx, client)
	default:
		return fmt.Errorf("unknown subcommand")
	}
}
