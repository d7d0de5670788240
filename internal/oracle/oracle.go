// Package oracle is a thin client for the external language-model scoring
// and forecasting service. Its answers are advisory only: every caller has a
// deterministic fallback and treats any oracle failure as "unavailable".
package oracle

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ai-trade/internal/api"
	"ai-trade/internal/trace"
)

// ErrUnavailable is returned when the oracle cannot be used, either because
// no credentials are configured or the call failed.
var ErrUnavailable = errors.New("oracle unavailable")

var numberPattern = regexp.MustCompile(`-?\d+\.\d+|-?\d+`)

// Config configures the oracle client. An empty APIKey disables it.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

type Client struct {
	cfg  Config
	http *api.Client
}

// New creates an oracle client. The returned client is usable even without
// credentials; calls then fail fast with ErrUnavailable.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	httpClient := api.NewClient(
		api.WithTimeout(10*time.Second),
		api.WithHeader("Authorization", "Bearer "+cfg.APIKey),
	)
	return &Client{cfg: cfg, http: httpClient}
}

// Available reports whether credentials are configured.
func (c *Client) Available() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Complete sends one prompt and returns the raw completion text. A single
// attempt with a 10s timeout; no retries.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	ctx, span := trace.StartSpan(ctx, "oracle-call")
	defer span.End()

	body := map[string]any{
		"model":       c.cfg.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": c.cfg.Temperature,
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	resp, err := c.http.POST(ctx, c.cfg.BaseURL, body)
	if err != nil {
		return "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.DecodeJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices in oracle response")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}

// ExtractNumbers pulls every numeric token out of a completion, in order.
func ExtractNumbers(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// ExtractFirstNumber returns the first numeric token, if any.
func ExtractFirstNumber(text string) (float64, bool) {
	nums := ExtractNumbers(text)
	if len(nums) == 0 {
		return 0, false
	}
	return nums[0], true
}
