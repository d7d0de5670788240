// Package notify posts simulation summaries to a Discord webhook. Delivery
// is best effort; a missing webhook URL disables it entirely.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-trade/internal/types"
)

// DiscordNotifier sends messages through a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewDiscordNotifier creates a notifier. An empty webhookURL yields a
// disabled notifier whose Send calls are no-ops.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook is configured.
func (d *DiscordNotifier) Enabled() bool {
	return d != nil && d.WebhookURL != ""
}

// Send posts a plain text message to the webhook.
func (d *DiscordNotifier) Send(ctx context.Context, content string) error {
	if !d.Enabled() {
		return nil
	}
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord webhook error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendSimulation formats and sends a one-line summary of a finished
// simulation run.
func (d *DiscordNotifier) SendSimulation(ctx context.Context, symbol string, balance float64, result types.SimulationResult) error {
	msg := fmt.Sprintf("%s simulation: %d trades, $%.2f -> $%.2f",
		symbol, len(result.Trades), balance, result.FinalValue(balance))
	if result.AdvisoryNote != "" {
		msg += " | " + result.AdvisoryNote
	}
	return d.Send(ctx, msg)
}
