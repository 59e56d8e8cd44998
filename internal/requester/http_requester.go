package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester handles both request building and execution
type HTTPRequester struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

type HTTPRequesterParams struct {
	fx.In

	Config *config.FitbitConfig
}

// NewHTTPRequester creates a new HTTPRequester against the configured API base URL
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: params.Config.APIBaseURL,
		headers: map[string]string{
			"Accept": "application/json",
		},
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// BuildRouteExecutor creates a function that can execute requests for a specific route
func (r *HTTPRequester) BuildRouteExecutor(route *RouteConfig) (RouteExecutor, error) {
	if route == nil {
		return nil, fmt.Errorf("route config is nil")
	}
	builder := NewHTTPRequestBuilder(r.baseURL, r.headers, route)

	return func(ctx context.Context, auth AuthManager, params map[string]string) (*Response, error) {
		req, err := builder.BuildRequest(ctx, auth, params)
		if err != nil {
			return nil, err
		}
		logger.Debug("request route", zap.String("route", route.Name), zap.String("url", req.URL))

		start := time.Now()
		resp, err := r.execute(req)
		if err != nil {
			logger.Error("failed to execute request",
				zap.String("route", route.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return nil, err
		}

		logger.Debug("route responded",
			zap.String("route", route.Name),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
		return resp, nil
	}, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *Request) (resp *Response, err error) {
	httpResp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, NewHTTPError(httpResp.StatusCode, req.URL, bodyBytes)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
