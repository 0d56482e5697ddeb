// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package telemetry wires an optional OTLP tracer. When InitTracer was
// never called every helper degrades to no-op spans, so library code can
// create spans unconditionally.
package telemetry

import (
	"context"
	"runtime"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace" // named differently so it doesn't conflict with the tracer interface
	"go.opentelemetry.io/otel/trace"
)

const DefaultTracingEndpoint = "127.0.0.1:4317"

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// SubSpanFromCtx starts a child span named after the calling function.
// Returns a no-op span when tracing was never initialized.
func SubSpanFromCtx(ctx context.Context) (trace.Span, context.Context) {
	if tracer == nil {
		return trace.SpanFromContext(context.Background()), ctx
	}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	newCtx, span := tracer.Start(ctx, fn.Name())
	return span, newCtx
}

// InitTracer sets up the OTLP exporter and the global tracer.
func InitTracer(serviceName, endpoint string) error {
	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return err
	}

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = tracerProvider.Tracer(serviceName)

	log.Infof("OpenTelemetry tracer initialized, sending traces to %s", endpoint)
	return nil
}

// Shutdown flushes any buffered spans. Safe to call when tracing was
// never initialized.
func Shutdown(ctx context.Context) {
	if tracerProvider == nil {
		return
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Errorf("error shutting down tracer provider: %v", err)
	}
}
