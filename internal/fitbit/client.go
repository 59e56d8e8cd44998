package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Routes of the Fitbit Web API read by the dashboard
var (
	ActiveZoneMinutesRoute = &requester.RouteConfig{
		Name:        "active_zone_minutes",
		Method:      "GET",
		Path:        "/1/user/-/activities/active-zone-minutes/date/today/1d.json",
		Description: "Active Zone Minutes for today, daily resolution",
	}
	HeartRateRoute = &requester.RouteConfig{
		Name:        "heart_rate",
		Method:      "GET",
		Path:        "/1/user/-/activities/heart/date/today/today/1min.json",
		Description: "Intraday heart rate for today, 1 minute resolution",
	}
	DailySummaryRoute = &requester.RouteConfig{
		Name:        "daily_summary",
		Method:      "GET",
		Path:        "/1/user/-/activities/date/{date}.json",
		Description: "Daily activity summary for a date",
	}
)

// Fetcher reads the dashboard data for an access token
type Fetcher interface {
	FetchAll(ctx context.Context, accessToken string, date time.Time) (*Bundle, error)
}

// Client reads the three dashboard resources from the Fitbit Web API
type Client struct {
	activeZoneMinutes requester.RouteExecutor
	heartRate         requester.RouteExecutor
	dailySummary      requester.RouteExecutor
}

var _ Fetcher = (*Client)(nil)

// NewClient builds route executors on top of the requester
func NewClient(r *requester.HTTPRequester) (*Client, error) {
	azm, err := r.BuildRouteExecutor(ActiveZoneMinutesRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s executor: %w", ActiveZoneMinutesRoute.Name, err)
	}
	hr, err := r.BuildRouteExecutor(HeartRateRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s executor: %w", HeartRateRoute.Name, err)
	}
	summary, err := r.BuildRouteExecutor(DailySummaryRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s executor: %w", DailySummaryRoute.Name, err)
	}

	return &Client{
		activeZoneMinutes: azm,
		heartRate:         hr,
		dailySummary:      summary,
	}, nil
}

// ActiveZoneMinutes fetches today's Active Zone Minutes
func (c *Client) ActiveZoneMinutes(ctx context.Context, accessToken string) (*ActiveZoneMinutesResponse, error) {
	var out ActiveZoneMinutesResponse
	if err := c.get(ctx, c.activeZoneMinutes, ActiveZoneMinutesRoute.Name, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HeartRate fetches today's intraday heart rate
func (c *Client) HeartRate(ctx context.Context, accessToken string) (*HeartRateResponse, error) {
	var out HeartRateResponse
	if err := c.get(ctx, c.heartRate, HeartRateRoute.Name, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailySummary fetches the activity summary of the given day
func (c *Client) DailySummary(ctx context.Context, accessToken string, date time.Time) (*DailySummaryResponse, error) {
	var out DailySummaryResponse
	params := map[string]string{"date": date.Format(DateLayout)}
	if err := c.get(ctx, c.dailySummary, DailySummaryRoute.Name, accessToken, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAll fetches the three resources concurrently. The first failure cancels
// the remaining requests and is returned.
func (c *Client) FetchAll(ctx context.Context, accessToken string, date time.Time) (*Bundle, error) {
	bundle := &Bundle{Date: date}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		azm, err := c.ActiveZoneMinutes(gctx, accessToken)
		bundle.ActiveZoneMinutes = azm
		return err
	})
	g.Go(func() error {
		hr, err := c.HeartRate(gctx, accessToken)
		bundle.HeartRate = hr
		return err
	})
	g.Go(func() error {
		summary, err := c.DailySummary(gctx, accessToken, date)
		bundle.DailySummary = summary
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Fetched dashboard data", zap.String("date", date.Format(DateLayout)))
	return bundle, nil
}

func (c *Client) get(ctx context.Context, exec requester.RouteExecutor, name, accessToken string, params map[string]string, out any) error {
	resp, err := exec(ctx, requester.NewBearerAuth(accessToken), params)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", name, err)
	}
	return nil
}
