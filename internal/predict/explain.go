package predict

import (
	"context"
	"fmt"
	"strings"

	"ai-trade/internal/sentiment"
	"ai-trade/internal/types"
)

// Explain returns a short human-readable rationale for a prediction set.
// The oracle writes it when available; otherwise a deterministic template
// summarizes the inputs.
func (p *Predictor) Explain(ctx context.Context, predictions []float64, score float64, items []types.NewsItem) string {
	if len(predictions) == 0 {
		return ""
	}

	if p.oracle.Available() {
		titles := make([]string, len(items))
		for i, it := range items {
			titles[i] = it.Title
		}
		rounded := make([]string, len(predictions))
		for i, v := range predictions {
			rounded[i] = fmt.Sprintf("%.2f", v)
		}
		prompt := fmt.Sprintf(
			"In at most 200 tokens, briefly explain why these predicted closing prices are expected.\nPredictions: [%s]\nNews sentiment: %.3f\nHeadlines:\n%s",
			strings.Join(rounded, ", "), score, strings.Join(titles, "\n"))
		if out, err := p.oracle.Complete(ctx, prompt); err == nil && out != "" {
			return out
		}
	}

	return fmt.Sprintf(
		"Forecast derived from recent %s news sentiment (%.3f) and the historical price trend.",
		sentiment.Label(score), score)
}
