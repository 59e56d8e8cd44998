package requester

import (
	"context"
	"net/http"
)

// RouteExecutor is a function that can execute a route with params.
// Params fill path placeholders first; the rest become query parameters.
type RouteExecutor func(ctx context.Context, auth AuthManager, params map[string]string) (*Response, error)

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Headers     map[string]string
	HttpRequest *http.Request // The actual HTTP request
}

// Response represents a successful (2xx) HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}
