package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// readHeaderTimeout bounds slow clients on the diagnostics listener.
const readHeaderTimeout = 5 * time.Second

// DiagnosticsServer exposes /healthz, /readyz, and /metrics over HTTP while
// a playback is running.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsMux builds the diagnostics routes. A nil metrics handler
// leaves /metrics unrouted. Every request gets a server span from tracer.
func NewDiagnosticsMux(tracer trace.Tracer, metrics http.Handler, checks ...Check) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/readyz", ReadyHandler(checks...))

	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	return HTTPMiddleware(tracer, mux)
}

// NewDiagnosticsServer listens on addr and serves handler in the background.
// Use port 0 to pick a free port and read it back with Addr.
func NewDiagnosticsServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) (*DiagnosticsServer, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close gracefully shuts down the diagnostics server.
func (d *DiagnosticsServer) Close(ctx context.Context) error {
	err := d.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
