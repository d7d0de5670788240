package news

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"ai-trade/internal/logger"
	"ai-trade/internal/types"
)

// Scraper is the last-resort news source: it scrapes headlines straight off
// financial news sites when both the Polygon API and the RSS feed come back
// empty.
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// Source is one scrapeable news site.
type Source struct {
	Name      string
	URL       string // {symbol} is replaced with the upper-cased ticker
	Container string // CSS selector for one article block
	Title     string // CSS selector for the headline inside a block
	Link      string // CSS selector for the anchor inside a block
}

func defaultSources() []Source {
	return []Source{
		{
			Name:      "YahooFinance",
			URL:       "https://finance.yahoo.com/quote/{symbol}/news",
			Container: "li.stream-item",
			Title:     "h3",
			Link:      "a",
		},
		{
			Name:      "MarketWatch",
			URL:       "https://www.marketwatch.com/investing/stock/{symbol}",
			Container: "div.article__content",
			Title:     "h3.article__headline",
			Link:      "a.link",
		},
	}
}

// NewScraper creates a scraper with the default source list.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{sources: defaultSources(), timeout: timeout}
}

// Scrape visits each source in order and returns as soon as one of them
// yields headlines. Scrape errors are logged and swallowed.
func (s *Scraper) Scrape(ctx context.Context, symbol string, maxItems int) []types.NewsItem {
	symbol = strings.ToUpper(symbol)
	for _, src := range s.sources {
		items := s.scrapeSource(ctx, src, symbol, maxItems)
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func (s *Scraper) scrapeSource(ctx context.Context, src Source, symbol string, maxItems int) []types.NewsItem {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (compatible; ai-trade/1.0)"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	var items []types.NewsItem
	c.OnHTML(src.Container, func(e *colly.HTMLElement) {
		if len(items) >= maxItems {
			return
		}
		title := strings.TrimSpace(e.DOM.Find(src.Title).First().Text())
		if title == "" {
			return
		}
		link, _ := e.DOM.Find(src.Link).First().Attr("href")
		link = e.Request.AbsoluteURL(link)
		items = append(items, types.NewsItem{
			Title:     title,
			Link:      link,
			Publisher: src.Name,
		})
	})

	// Some sources nest headlines one level deeper than the container
	// selector; pick those up too rather than maintaining per-site quirks.
	c.OnHTML("body", func(e *colly.HTMLElement) {
		if len(items) > 0 {
			return
		}
		e.DOM.Find(src.Title).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			title := strings.TrimSpace(sel.Text())
			if title == "" {
				return true
			}
			link, _ := sel.Closest("a").Attr("href")
			items = append(items, types.NewsItem{
				Title:     title,
				Link:      e.Request.AbsoluteURL(link),
				Publisher: src.Name,
			})
			return len(items) < maxItems
		})
	})

	u := strings.ReplaceAll(src.URL, "{symbol}", symbol)
	if err := c.Visit(u); err != nil {
		logger.Debug(ctx, "Scrape failed", "source", src.Name, "symbol", symbol, "error", err)
		return nil
	}
	c.Wait()
	return items
}
