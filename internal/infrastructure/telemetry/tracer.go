// Package telemetry wires OpenTelemetry traces, metrics and logs, Pyroscope
// profiling, and the CRM business metrics.
package telemetry

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type TracingConfig struct {
	Collector
	Enabled       bool
	SamplingRatio float64
	// SpanProfiles links Pyroscope CPU samples to the spans that produced them.
	SpanProfiles bool
}

func TracingConfigFrom(cfg config.TelemetryConfig) TracingConfig {
	return TracingConfig{
		Collector:     collectorFrom(cfg),
		Enabled:       cfg.Enabled,
		SamplingRatio: cfg.SamplingRatio,
		SpanProfiles:  cfg.ProfilingEnabled,
	}
}

type TracerProvider struct {
	lifecycle
	// global is what the rest of the process gets from otel.GetTracerProvider.
	global trace.TracerProvider
}

// NewTracerProvider exports spans over OTLP and installs the W3C trace
// context and baggage propagators. Disabled tracing leaves the otel globals
// untouched.
func NewTracerProvider(ctx context.Context, cfg TracingConfig, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{lifecycle: lifecycle{signal: "traces", logger: logger}}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRatio)),
	)
	tp.sdk = sdk
	tp.global = sdk
	if cfg.SpanProfiles {
		tp.global = otelpyroscope.NewTracerProvider(sdk)
	}
	otel.SetTracerProvider(tp.global)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.Endpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("span_profiles", cfg.SpanProfiles),
	)
	return tp, nil
}

// newSampler respects the parent's decision so a request is traced whole or
// not at all.
func newSampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.global == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.global.Tracer(name, opts...)
}
