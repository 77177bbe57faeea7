package api

import "context"

// PathResolver builds configuration API URLs. The groups endpoints pin
// different API versions per operation, so path construction always takes
// the version explicitly.
type PathResolver interface {
	// configPath returns the full URL for a versioned configuration endpoint.
	// Example: configPath("v2", "/groups") -> "https://host/configuration/v2/groups"
	configPath(version, path string) string
}

// HTTPExecutor performs HTTP exchanges against the API.
//
// exchange returns the raw status and body without mapping HTTP error
// statuses to Go errors; do layers *APIError conversion and JSON decoding
// on top for callers that only care about the success path.
type HTTPExecutor interface {
	exchange(ctx context.Context, method, url string, body any) (*Response, error)
	do(ctx context.Context, method, url string, body any, result any) error
}

// Requester combines PathResolver and HTTPExecutor to provide the request
// surface the resource services depend on. Tests can substitute a fake
// Requester to assert on request shapes, or to count calls.
type Requester interface {
	PathResolver
	HTTPExecutor
}
