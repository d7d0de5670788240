// Package marketdata fetches historical bars and raw trade ticks from the
// Polygon REST API. Market data is the one upstream whose failure is fatal
// to a request; there is no fallback source.
package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ai-trade/internal/api"
	"ai-trade/internal/logger"
	"ai-trade/internal/trace"
	"ai-trade/internal/types"
)

// ErrNoData is returned when the upstream answered but had no bars or ticks
// for the request. Callers present it as a plain "no data" message.
var ErrNoData = fmt.Errorf("no data available")

var intervalPattern = regexp.MustCompile(`^(\d+)([a-zA-Z]+)$`)

// periodBars maps a display period to the trailing bar count kept from a
// one-year fetch.
var periodBars = map[string]int{
	"5d":  5,
	"1mo": 22,
	"3mo": 66,
	"6mo": 132,
	"1y":  264,
}

// BarsForPeriod returns the trailing bar count for a period, defaulting to 5.
func BarsForPeriod(period string) int {
	if n, ok := periodBars[period]; ok {
		return n
	}
	return 5
}

// Periods lists the supported period enumerants.
func Periods() []string {
	return []string{"5d", "1mo", "3mo", "6mo", "1y"}
}

// Client talks to Polygon. The zero APIKey client fails every call; the
// caller decides what that means.
type Client struct {
	apiKey  string
	baseURL string
	http    *api.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = api.NewClient(api.WithTimeout(timeout), api.WithLogging(true))
	}
}

// New creates a Polygon client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.polygon.io",
		http:    api.NewClient(api.WithTimeout(10*time.Second), api.WithLogging(true)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type aggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
		T int64   `json:"t"`
	} `json:"results"`
}

// parseInterval splits an interval like "1m", "5m", "1h", "1d" into
// Polygon's multiplier/timespan URL segments.
func parseInterval(interval string) (int, string) {
	m := intervalPattern.FindStringSubmatch(interval)
	if m == nil {
		return 1, "day"
	}
	mult := 0
	fmt.Sscanf(m[1], "%d", &mult)
	if mult == 0 {
		mult = 1
	}
	switch strings.ToLower(m[2]) {
	case "m", "min":
		return mult, "minute"
	case "h":
		return mult, "hour"
	case "d":
		return mult, "day"
	default:
		return mult, "day"
	}
}

// History fetches up to a year of aggregates for symbol and returns the
// trailing bars for the requested period. The series is validated before it
// is returned; corrupt upstream data is rejected whole.
func (c *Client) History(ctx context.Context, symbol, period, interval string) (types.Series, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("POLYGON_API_KEY not set")
	}

	ctx, span := trace.StartSpan(ctx, "polygon-aggs")
	defer span.End()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -365)
	mult, timespan := parseInterval(interval)

	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s?adjusted=true&sort=asc&apiKey=%s",
		c.baseURL, url.PathEscape(symbol), mult, timespan,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		url.QueryEscape(c.apiKey))

	resp, err := c.http.GET(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	var data aggsResponse
	if err := resp.DecodeJSON(&data); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", symbol, err)
	}
	// Polygon sometimes reports DELAYED even when results are valid, so
	// treat it the same as OK when results are present.
	if (data.Status != "OK" && data.Status != "DELAYED") || len(data.Results) == 0 {
		logger.Warn(ctx, "No aggregates returned", "symbol", symbol, "status", data.Status)
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	series := make(types.Series, 0, len(data.Results))
	for _, r := range data.Results {
		series = append(series, types.Bar{
			Ts:     r.T,
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: r.V,
		})
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", symbol, err)
	}

	if n := BarsForPeriod(period); len(series) > n {
		series = series[len(series)-n:]
	}
	return series, nil
}

type tradesResponse struct {
	Results []struct {
		SipTimestamp int64   `json:"sip_timestamp"`
		Price        float64 `json:"price"`
		Size         float64 `json:"size"`
	} `json:"results"`
	NextURL string `json:"next_url"`
}

// Ticks fetches all trade events for one symbol on one UTC trading day
// (04:00-20:00Z), following Polygon's pagination cursor.
func (c *Client) Ticks(ctx context.Context, symbol, date string) ([]types.Tick, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("POLYGON_API_KEY not set")
	}

	ctx, span := trace.StartSpan(ctx, "polygon-ticks")
	defer span.End()

	u := fmt.Sprintf("%s/v3/trades/%s?timestamp.gte=%sT04:00:00Z&timestamp.lte=%sT20:00:00Z&limit=50000&apiKey=%s",
		c.baseURL, url.PathEscape(symbol), date, date, url.QueryEscape(c.apiKey))

	var ticks []types.Tick
	for u != "" {
		resp, err := c.http.GET(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("fetch ticks for %s on %s: %w", symbol, date, err)
		}
		var data tradesResponse
		if err := resp.DecodeJSON(&data); err != nil {
			return nil, fmt.Errorf("decode ticks for %s: %w", symbol, err)
		}
		for _, r := range data.Results {
			ticks = append(ticks, types.Tick{Ts: r.SipTimestamp, Price: r.Price, Size: r.Size})
		}
		if data.NextURL == "" {
			break
		}
		u = data.NextURL + "&apiKey=" + url.QueryEscape(c.apiKey)
	}

	logger.Debug(ctx, "Ticks fetched", "symbol", symbol, "date", date, "count", len(ticks))
	return ticks, nil
}
