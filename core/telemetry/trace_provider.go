package telemetry

import (
	"context"

	"github.com/anoideaopen/inspector/core/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies spans produced by this module.
const InstrumentationName = "github.com/anoideaopen/inspector"

// ShutdownFunc flushes and stops the installed trace provider.
type ShutdownFunc func(ctx context.Context) error

// InstallTraceProvider installs a global trace provider based on the http otlp exporter.
// An empty endpoint installs a noop provider. Exporter failures are logged and
// also fall back to the noop provider, tracing never stops the caller.
func InstallTraceProvider(endpoint string, serviceName string) ShutdownFunc {
	var (
		tracerProvider trace.TracerProvider = noop.NewTracerProvider()
		shutdown                            = func(context.Context) error { return nil }
	)

	defer func() {
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	}()

	if len(endpoint) == 0 {
		return shutdown
	}

	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	exporter, err := otlptrace.New(context.Background(), client)
	if err != nil {
		logger.Logger().Errorf("creating OTLP trace exporter: %v", err)
		return shutdown
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName)))
	if err != nil {
		logger.Logger().Errorf("creating resource: %v", err)
		return shutdown
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r))

	tracerProvider = provider

	return provider.Shutdown
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
