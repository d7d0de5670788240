// Package news returns recent headlines for a symbol. Sources are tried in
// order: Polygon's reference news API, the Yahoo Finance RSS feed, and an
// HTML scraper. Failures never propagate; the worst case is an empty list,
// which is a valid result.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ai-trade/internal/api"
	"ai-trade/internal/logger"
	"ai-trade/internal/trace"
	"ai-trade/internal/types"
)

// Fetcher fetches headlines from the configured sources.
type Fetcher struct {
	polygonKey     string
	polygonBaseURL string
	rssBaseURL     string
	maxItems       int
	http           *api.Client
	scraper        *Scraper
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithPolygonBaseURL overrides the Polygon host, used by tests.
func WithPolygonBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.polygonBaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithRSSBaseURL overrides the Yahoo RSS host, used by tests.
func WithRSSBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.rssBaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithScraper adds an HTML scraper as the last-resort source.
func WithScraper(s *Scraper) Option {
	return func(f *Fetcher) {
		f.scraper = s
	}
}

// WithMaxItems caps the number of returned headlines.
func WithMaxItems(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxItems = n
		}
	}
}

// NewFetcher creates a Fetcher. polygonKey may be empty, in which case the
// Polygon source is skipped entirely.
func NewFetcher(polygonKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		polygonKey:     polygonKey,
		polygonBaseURL: "https://api.polygon.io",
		rssBaseURL:     "https://feeds.finance.yahoo.com",
		maxItems:       5,
		http:           api.NewClient(api.WithTimeout(10 * time.Second)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns up to maxItems recent headlines, freshest first. It never
// returns an error; an empty slice means no news could be found.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) []types.NewsItem {
	ctx, span := trace.StartSpan(ctx, "news-fetch")
	defer span.End()

	if f.polygonKey != "" {
		items, err := f.fetchPolygon(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Polygon news failed, falling back to RSS", "symbol", symbol, "error", err)
		} else if len(items) > 0 {
			return items
		}
	}

	items, err := f.fetchRSS(ctx, symbol)
	if err != nil {
		logger.Warn(ctx, "RSS news failed", "symbol", symbol, "error", err)
	} else if len(items) > 0 {
		return items
	}

	if f.scraper != nil {
		items = f.scraper.Scrape(ctx, symbol, f.maxItems)
	}
	return items
}

type polygonNewsResponse struct {
	Results []struct {
		Title      string `json:"title"`
		ArticleURL string `json:"article_url"`
		Publisher  struct {
			Name string `json:"name"`
		} `json:"publisher"`
	} `json:"results"`
}

func (f *Fetcher) fetchPolygon(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	u := fmt.Sprintf("%s/v2/reference/news?ticker=%s&limit=%d&apiKey=%s",
		f.polygonBaseURL, url.QueryEscape(symbol), f.maxItems, url.QueryEscape(f.polygonKey))

	resp, err := f.http.GET(ctx, u)
	if err != nil {
		return nil, err
	}
	var data polygonNewsResponse
	if err := resp.DecodeJSON(&data); err != nil {
		return nil, err
	}

	items := make([]types.NewsItem, 0, len(data.Results))
	for _, r := range data.Results {
		if r.Title == "" || r.ArticleURL == "" {
			continue
		}
		items = append(items, types.NewsItem{
			Title:     r.Title,
			Link:      r.ArticleURL,
			Publisher: r.Publisher.Name,
		})
		if len(items) == f.maxItems {
			break
		}
	}
	return items, nil
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title  string `xml:"title"`
			Link   string `xml:"link"`
			Source struct {
				Name string `xml:",chardata"`
			} `xml:"source"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (f *Fetcher) fetchRSS(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	u := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US",
		f.rssBaseURL, url.QueryEscape(symbol))

	resp, err := f.http.GET(ctx, u)
	if err != nil {
		return nil, err
	}
	var feed rssFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, err
	}

	items := make([]types.NewsItem, 0, f.maxItems)
	for _, it := range feed.Channel.Items {
		if it.Title == "" {
			continue
		}
		items = append(items, types.NewsItem{
			Title:     it.Title,
			Link:      it.Link,
			Publisher: strings.TrimSpace(it.Source.Name),
		})
		if len(items) == f.maxItems {
			break
		}
	}
	return items, nil
}
