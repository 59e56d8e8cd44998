package requester

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HTTPRequestBuilder turns a route and its params into an authenticated *http.Request
type HTTPRequestBuilder struct {
	baseURL     string
	headers     map[string]string
	routeConfig *RouteConfig
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(baseURL string, headers map[string]string, routeConfig *RouteConfig) *HTTPRequestBuilder {
	return &HTTPRequestBuilder{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		headers:     headers,
		routeConfig: routeConfig,
	}
}

// BuildRequest builds a request from the route and parameters
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, auth AuthManager, params map[string]string) (*Request, error) {
	if b.routeConfig == nil {
		return nil, fmt.Errorf("route config is nil")
	}

	method := b.routeConfig.Method
	if method == "" {
		method = http.MethodGet
	}

	u, remaining := b.buildURL(b.routeConfig.Path, params)
	if method == http.MethodGet {
		var err error
		u, err = b.addQueryParams(u, remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to build URL: %w", err)
		}
	}

	// Merge headers
	headers := make(map[string]string)
	for k, v := range b.headers {
		headers[k] = v
	}
	for k, v := range b.routeConfig.Headers {
		headers[k] = v
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	if auth != nil {
		if err := auth.ApplyAuth(httpReq); err != nil {
			return nil, fmt.Errorf("failed to apply authentication: %w", err)
		}
	}

	return &Request{
		URL:         u,
		Method:      method,
		Headers:     headers,
		HttpRequest: httpReq,
	}, nil
}

// buildURL fills path placeholders and returns the params that were not consumed
func (b *HTTPRequestBuilder) buildURL(path string, params map[string]string) (string, map[string]string) {
	remaining := make(map[string]string)
	for key, value := range params {
		placeholder := fmt.Sprintf("{%s}", key)
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
			continue
		}
		remaining[key] = value
	}
	return b.baseURL + path, remaining
}

func (b *HTTPRequestBuilder) addQueryParams(baseURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return baseURL, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
