package observability

import "go.opentelemetry.io/otel/sdk/resource"

// ProbeBuildResource exposes buildResource for testing.
func ProbeBuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}
