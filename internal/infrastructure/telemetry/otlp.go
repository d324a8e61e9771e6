package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported span, metric and log record.
var ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP/gRPC endpoint shared by traces, metrics and logs.
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func collectorFrom(cfg config.TelemetryConfig) Collector {
	return Collector{
		Endpoint:    cfg.CollectorEndpoint,
		Insecure:    cfg.Insecure,
		ServiceName: cfg.ServiceName,
	}
}

func (c Collector) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// sdkProvider is the part of the trace, metric and log SDK providers the
// lifecycle needs.
type sdkProvider interface {
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// lifecycle is embedded by each provider wrapper. A nil sdk means the signal
// is disabled and every call is a no-op.
type lifecycle struct {
	signal string
	sdk    sdkProvider
	logger *zap.Logger
}

func (l *lifecycle) IsEnabled() bool {
	return l.sdk != nil
}

func (l *lifecycle) ForceFlush(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	return l.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the exporter, giving up after shutdownTimeout.
func (l *lifecycle) Shutdown(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := l.sdk.Shutdown(ctx); err != nil {
		l.logger.Error("OpenTelemetry shutdown failed", zap.String("signal", l.signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", l.signal, err)
	}
	l.logger.Info("OpenTelemetry provider stopped", zap.String("signal", l.signal))
	return nil
}
