package observability

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"pulse-server/internal/config"
)

// Setup initialises OpenTelemetry tracing and metrics exporters. It returns a shutdown function that must be invoked on exit.
func Setup(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceNamespace(cfg.ServiceNamespace),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	var (
		tracerProvider *sdktrace.TracerProvider
		meterProvider  *sdkmetric.MeterProvider
	)

	if cfg.OTLPEndpoint != "" {
		// Accept both "collector:4318" and full URLs.
		endpoint := cfg.OTLPEndpoint
		insecure := true
		if strings.HasPrefix(endpoint, "http://") {
			endpoint = strings.TrimPrefix(endpoint, "http://")
		} else if strings.HasPrefix(endpoint, "https://") {
			endpoint = strings.TrimPrefix(endpoint, "https://")
			insecure = false
		}

		traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
		if insecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		if headers := parseHeaders(cfg.OTLPHeaders); len(headers) > 0 {
			traceOpts = append(traceOpts, otlptracehttp.WithHeaders(headers))
			metricOpts = append(metricOpts, otlpmetrichttp.WithHeaders(headers))
		}

		traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
		if err != nil {
			return nil, err
		}
		meterExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
		if err != nil {
			return nil, err
		}

		tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter),
		)
		reader := sdkmetric.NewPeriodicReader(meterExporter, sdkmetric.WithInterval(30*time.Second))
		meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		)
	} else {
		tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	}

	otel.SetTracerProvider(tracerProvider)

	shutdown := func(ctx context.Context) error {
		var shutdownErr error
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown meter provider")
			shutdownErr = err
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer provider")
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
		return shutdownErr
	}

	return shutdown, nil
}

func parseHeaders(raw string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key != "" && value != "" {
			result[key] = value
		}
	}
	return result
}
