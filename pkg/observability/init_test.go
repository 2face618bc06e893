package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
)

func initProviders(t *testing.T, cfg observability.Config) observability.Providers {
	t.Helper()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	return providers
}

func TestInit_DefaultsAreNoop(t *testing.T) {
	t.Parallel()

	providers := initProviders(t, observability.DefaultConfig())

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)
	assert.Nil(t, providers.MetricsHandler)

	_, span := providers.Tracer.Start(context.Background(), "traverse")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid(), "no-op spans carry no trace id")
}

func TestInit_ShutdownTwice(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Prometheus = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.NotPanics(t, func() { _ = providers.Shutdown(context.Background()) })
}

func TestInit_DebugTraceLogsSpans(t *testing.T) {
	// DebugTrace must win over an environment sampler that drops everything.
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")

	var logs bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.DebugTrace = true
	cfg.LogLevel = slog.LevelDebug
	cfg.LogOutput = &logs

	providers := initProviders(t, cfg)

	_, span := providers.Tracer.Start(context.Background(), "treewalk.play")
	span.SetAttributes(attribute.String("traversal.order", "BFS"))
	span.RecordError(errors.New("boom"))
	span.SetStatus(codes.Error, "boom")
	span.End()

	assert.True(t, span.SpanContext().IsValid())

	out := logs.String()
	assert.Contains(t, out, `msg="span ended"`)
	assert.Contains(t, out, "span=treewalk.play")
	assert.Contains(t, out, "traversal.order=BFS")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "trace_id="+span.SpanContext().TraceID().String())
}

func TestInit_DebugTraceQuietAboveDebugLevel(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.DebugTrace = true
	cfg.LogOutput = &logs

	providers := initProviders(t, cfg)

	_, span := providers.Tracer.Start(context.Background(), "treewalk.traverse")
	span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.Empty(t, logs.String())
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "authorization=Bearer abc", map[string]string{"authorization": "Bearer abc"}},
		{"trimmed", " k1 = v1 , k2 = v2 ", map[string]string{"k1": "v1", "k2": "v2"}},
		{"skips_bare", "k1=v1,junk", map[string]string{"k1": "v1"}},
		{"all_bare", "junk", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.input))
		})
	}
}

func TestBuildResource_Attributes(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "demo"
	cfg.Mode = observability.ModeMCP

	res, err := observability.ProbeBuildResource(cfg)
	require.NoError(t, err)

	got := make(map[string]string)
	for _, attr := range res.Attributes() {
		got[string(attr.Key)] = attr.Value.Emit()
	}

	assert.Equal(t, "treewalk", got["service.name"])
	assert.Equal(t, "1.2.3", got["service.version"])
	assert.Equal(t, "demo", got["deployment.environment"])
	assert.Equal(t, "mcp", got["app.mode"])
}

func TestInit_PrometheusServesInstruments(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Prometheus = true

	providers := initProviders(t, cfg)
	require.NotNil(t, providers.MetricsHandler)

	playback, err := observability.NewPlaybackMetrics(providers.Meter)
	require.NoError(t, err)

	playback.SessionStarted(context.Background())
	playback.KeyActivated(context.Background())

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	body := rec.Body.String()
	assert.Contains(t, body, "target_info")
	assert.Contains(t, body, "treewalk_playback_sessions_total")
	assert.Contains(t, body, "treewalk_playback_activations_total")
}
