package observability_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
)

var errNotPlaying = errors.New("not playing")

func TestDiagnosticsMux_Routes(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	metrics := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(rw, "treewalk_playback_sessions_total 1\n")
	})

	playing := false
	ready := observability.Check{Name: "playback", Probe: func(context.Context) error {
		if !playing {
			return errNotPlaying
		}

		return nil
	}}

	mux := observability.NewDiagnosticsMux(tp.Tracer("test"), metrics, ready)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

		return rec
	}

	assert.Equal(t, http.StatusOK, get("/healthz").Code)
	rec := get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"playback":"not playing"}}`, rec.Body.String())

	playing = true

	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	rec = get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "treewalk_playback_sessions_total")

	assert.Len(t, exporter.GetSpans(), 4)
}

func TestDiagnosticsMux_NoMetricsHandler(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	mux := observability.NewDiagnosticsMux(tp.Tracer("test"), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiagnosticsServer_ServesOverTCP(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	ctx := context.Background()
	mux := observability.NewDiagnosticsMux(tp.Tracer("test"), nil)

	srv, err := observability.NewDiagnosticsServer(ctx, "127.0.0.1:0", mux, observability.NewLogger(observability.DefaultConfig()))
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+srv.Addr()+"/healthz", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	require.NoError(t, srv.Close(ctx))
}
