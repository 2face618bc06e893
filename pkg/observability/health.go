package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// Check is a named readiness probe. A nil error from Probe means ready.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler answers liveness probes: always 200 {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeReport(rw, http.StatusOK, healthReport{Status: statusOK})
	})
}

// ReadyHandler runs every check and reports each by name, "ok" or the error
// text. Any failure makes the response 503 "unavailable".
func ReadyHandler(checks ...Check) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		report := healthReport{Status: statusOK}
		code := http.StatusOK

		for _, check := range checks {
			if report.Checks == nil {
				report.Checks = make(map[string]string, len(checks))
			}

			err := check.Probe(req.Context())
			if err != nil {
				report.Checks[check.Name] = err.Error()
				report.Status = statusUnavailable
				code = http.StatusServiceUnavailable

				continue
			}

			report.Checks[check.Name] = statusOK
		}

		writeReport(rw, code, report)
	})
}

func writeReport(rw http.ResponseWriter, code int, report healthReport) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	_ = json.NewEncoder(rw).Encode(report)
}
