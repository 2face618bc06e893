package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSessionsStarted = "treewalk.playback.sessions.total"
	metricSessionsEnded   = "treewalk.playback.sessions.ended.total"
	metricSessionDuration = "treewalk.playback.session.duration.seconds"
	metricActiveSessions  = "treewalk.playback.sessions.active"
	metricActivations     = "treewalk.playback.activations.total"
	metricSkips           = "treewalk.playback.skips.total"

	attrOutcome = "outcome"
)

// sessionBucketBoundaries spans an instantly completing empty sequence up to
// several minutes of two-second steps.
var sessionBucketBoundaries = []float64{0.001, 0.1, 1, 2, 5, 10, 15, 30, 60, 120, 300}

// PlaybackMetrics holds OTel instruments for traversal playback sessions.
type PlaybackMetrics struct {
	sessionsStarted metric.Int64Counter
	sessionsEnded   metric.Int64Counter
	sessionDuration metric.Float64Histogram
	activeSessions  metric.Int64UpDownCounter
	activations     metric.Int64Counter
	skips           metric.Int64Counter
}

// NewPlaybackMetrics creates playback instruments from the given meter.
func NewPlaybackMetrics(mt metric.Meter) (*PlaybackMetrics, error) {
	started, err := mt.Int64Counter(metricSessionsStarted,
		metric.WithDescription("Playback sessions started"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSessionsStarted, err)
	}

	ended, err := mt.Int64Counter(metricSessionsEnded,
		metric.WithDescription("Playback sessions ended, by outcome"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSessionsEnded, err)
	}

	duration, err := mt.Float64Histogram(metricSessionDuration,
		metric.WithDescription("Wall time from play to completion or cancellation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sessionBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSessionDuration, err)
	}

	active, err := mt.Int64UpDownCounter(metricActiveSessions,
		metric.WithDescription("Playback sessions currently playing"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricActiveSessions, err)
	}

	activations, err := mt.Int64Counter(metricActivations,
		metric.WithDescription("Keys activated on the sink"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricActivations, err)
	}

	skips, err := mt.Int64Counter(metricSkips,
		metric.WithDescription("Keys skipped because the sink had no correspondent"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSkips, err)
	}

	return &PlaybackMetrics{
		sessionsStarted: started,
		sessionsEnded:   ended,
		sessionDuration: duration,
		activeSessions:  active,
		activations:     activations,
		skips:           skips,
	}, nil
}

// SessionStarted records a new playing session.
func (pm *PlaybackMetrics) SessionStarted(ctx context.Context) {
	pm.sessionsStarted.Add(ctx, 1)
	pm.activeSessions.Add(ctx, 1)
}

// SessionEnded records the end of a session with its outcome label
// ("completed" or "canceled") and total duration.
func (pm *PlaybackMetrics) SessionEnded(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	pm.sessionsEnded.Add(ctx, 1, attrs)
	pm.sessionDuration.Record(ctx, duration.Seconds(), attrs)
	pm.activeSessions.Add(ctx, -1)
}

// KeyActivated records one key highlighted on the sink.
func (pm *PlaybackMetrics) KeyActivated(ctx context.Context) {
	pm.activations.Add(ctx, 1)
}

// KeySkipped records one key the sink could not resolve.
func (pm *PlaybackMetrics) KeySkipped(ctx context.Context) {
	pm.skips.Add(ctx, 1)
}
