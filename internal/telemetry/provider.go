// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry wires OpenTelemetry tracing for the dispatch engine.
package telemetry

import (
	"context"
	"fmt"

	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes pending spans. It is safe to call on a disabled setup.
type ShutdownFunc func(context.Context) error

// Setup builds the tracer provider described by cfg and installs it globally.
//
// Tracing is opt-in: when cfg is disabled, Setup returns a no-op provider and
// leaves the global provider untouched.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (trace.TracerProvider, ShutdownFunc, error) {
	nothing := func(context.Context) error { return nil }
	log := logger.GetTelemetryLogger()

	if !cfg.Enabled {
		log.Debug().Msg("Tracing disabled")
		return noop.NewTracerProvider(), nothing, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, nothing, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, nothing, fmt.Errorf("failed to create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("service", cfg.ServiceName).
		Msg("Tracing enabled")

	return tp, tp.Shutdown, nil
}
