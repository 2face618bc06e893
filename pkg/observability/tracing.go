package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// buildTracerProvider returns a no-op provider unless spans have somewhere to
// go: an OTLP collector, the debug span log, or both. Sampling follows
// OTEL_TRACES_SAMPLER except under DebugTrace, which records every span.
func buildTracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource, logger *slog.Logger,
) (trace.TracerProvider, shutdownFunc, error) {
	if cfg.OTLPEndpoint == "" && !cfg.DebugTrace {
		return nooptrace.NewTracerProvider(), noopShutdown, nil
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}

		if cfg.OTLPInsecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}

		if len(cfg.OTLPHeaders) > 0 {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
		}

		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create trace exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	if cfg.DebugTrace {
		opts = append(opts,
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithSpanProcessor(spanLog{logger: logger}),
		)
	}

	tp := sdktrace.NewTracerProvider(opts...)

	return tp, tp.Shutdown, nil
}

// spanLog writes each finished span to the logger at debug level.
type spanLog struct {
	logger *slog.Logger
}

func (spanLog) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (s spanLog) OnEnd(span sdktrace.ReadOnlySpan) {
	args := []any{
		slog.String("span", span.Name()),
		slog.String(attrTraceID, span.SpanContext().TraceID().String()),
		slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
	}

	if status := span.Status(); status.Code == codes.Error {
		args = append(args, slog.String("error", status.Description))
	}

	for _, kv := range span.Attributes() {
		args = append(args, slog.String(string(kv.Key), kv.Value.Emit()))
	}

	s.logger.Debug("span ended", args...)
}

func (spanLog) Shutdown(context.Context) error   { return nil }
func (spanLog) ForceFlush(context.Context) error { return nil }
