package observability

import (
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// httpStatusServerError is the threshold for HTTP server errors.
const httpStatusServerError = 500

// responseRecorder wraps [http.ResponseWriter] to capture the status code
// and the number of body bytes written.
type responseRecorder struct {
	http.ResponseWriter

	statusCode int
	bodyBytes  int64
	written    bool
}

// WriteHeader captures the status code before delegating to the wrapped writer.
func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.written {
		rr.statusCode = code
		rr.written = true
	}

	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(buf []byte) (int, error) {
	if !rr.written {
		rr.statusCode = http.StatusOK
		rr.written = true
	}

	n, err := rr.ResponseWriter.Write(buf)
	rr.bodyBytes += int64(n)

	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// HTTPMiddleware returns an [http.Handler] that creates a server span per
// request. When next is an [http.ServeMux], the span is named
// "METHOD pattern" after the matched route; requests that match nothing keep
// the bare method name so stray paths cannot blow up span cardinality.
func HTTPMiddleware(tracer trace.Tracer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		// Extract W3C traceparent/tracestate/baggage from incoming headers.
		parentCtx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

		ctx, span := tracer.Start(parentCtx, hr.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(hr.Method),
				attribute.String("http.target", hr.URL.Path),
			),
		)
		defer span.End()

		rec := &responseRecorder{ResponseWriter: rw, statusCode: http.StatusOK}
		req := hr.WithContext(ctx)
		next.ServeHTTP(rec, req)

		// ServeMux records the matched pattern on the request it was handed.
		if route := routeOf(req.Pattern); route != "" {
			span.SetName(hr.Method + " " + route)
			span.SetAttributes(semconv.HTTPRoute(route))
		}

		span.SetAttributes(
			semconv.HTTPResponseStatusCode(rec.statusCode),
			semconv.HTTPResponseBodySize(int(rec.bodyBytes)),
		)

		if rec.statusCode >= httpStatusServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.statusCode))
		}
	})
}

// routeOf strips the optional method from a ServeMux pattern such as
// "POST /readyz".
func routeOf(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return strings.TrimSpace(path)
	}

	return pattern
}
