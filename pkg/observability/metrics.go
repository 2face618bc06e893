package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "treewalk.requests.total"
	metricRequestDuration  = "treewalk.request.duration.seconds"
	metricErrorsTotal      = "treewalk.errors.total"
	metricInflightRequests = "treewalk.inflight.requests"

	attrOp        = "op"
	attrStatus    = "status"
	attrErrorKind = "error.kind"

	statusError = "error"
)

// requestBucketBoundaries covers sub-millisecond tree queries up to a few
// seconds for large caller-supplied key sets.
var requestBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// REDMetrics counts rate, errors, and duration of request-style operations
// such as MCP tool calls.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates the instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	var (
		red REDMetrics
		err error
	)

	red.requests, err = mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Requests handled, by operation and status"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	red.duration, err = mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBucketBoundaries...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	red.errors, err = mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Failed requests, by operation and error kind"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	red.inflight, err = mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Requests currently being handled"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &red, nil
}

// RecordRequest records one finished request. An empty errKind is a
// success; anything else counts as a failure of that kind.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op string, elapsed time.Duration, errKind string) {
	status := statusOK
	if errKind != "" {
		status = statusError
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op), attribute.String(attrStatus, status))

	rm.requests.Add(ctx, 1, attrs)
	rm.duration.Record(ctx, elapsed.Seconds(), attrs)

	if errKind != "" {
		rm.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
			attribute.String(attrErrorKind, errKind),
		))
	}
}

// TrackInflight counts op as in flight until the returned func is called.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflight.Add(ctx, 1, attrs)

	return func() { rm.inflight.Add(ctx, -1, attrs) }
}
