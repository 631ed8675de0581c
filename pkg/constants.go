// Package pkg provides shared types and constants for the vanish API.
package pkg

// Route constants shared by the router and its tests.
const (
	// APIBasePath is the root path for the JSON API.
	APIBasePath = "/api"

	// HealthCheckPath reports process liveness without touching paste state.
	HealthCheckPath = APIBasePath + "/healthz"
	LivenessPath    = APIBasePath + "/livez"
	ReadinessPath   = APIBasePath + "/readyz"

	// PastesPath is the collection endpoint for creating pastes.
	PastesPath = APIBasePath + "/pastes"

	// ViewPathPrefix is the prefix of the human-facing share URL.
	ViewPathPrefix = "/p/"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
)
