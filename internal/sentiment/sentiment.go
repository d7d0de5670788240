// Package sentiment turns a batch of headlines into a single score in
// [-1, 1]. The oracle strategy is tried first when credentials exist;
// anything short of a clean numeric answer falls through to the lexicon
// scorer. Scoring never fails: no news is simply neutral.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"ai-trade/internal/logger"
	"ai-trade/internal/oracle"
	"ai-trade/internal/types"
)

// Labels for the 3-way display bucketing. Pure function of the score.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Analyzer scores news headlines.
type Analyzer struct {
	oracle  *oracle.Client
	lexicon *Lexicon
}

// NewAnalyzer creates an Analyzer. oracleClient may be nil or without
// credentials; the lexicon fallback then does all the work.
func NewAnalyzer(oracleClient *oracle.Client) *Analyzer {
	return &Analyzer{
		oracle:  oracleClient,
		lexicon: NewLexicon(),
	}
}

// Score returns the average sentiment of the given headlines in [-1, 1].
// An empty list scores 0.0.
func (a *Analyzer) Score(ctx context.Context, items []types.NewsItem) float64 {
	if len(items) == 0 {
		return 0.0
	}

	if score, ok := a.oracleScore(ctx, items); ok {
		return score
	}

	var sum float64
	for _, it := range items {
		sum += a.lexicon.Compound(it.Title)
	}
	return sum / float64(len(items))
}

// oracleScore asks the oracle for a single score. Any failure, including a
// response with no numeric token, reports !ok and is never surfaced.
func (a *Analyzer) oracleScore(ctx context.Context, items []types.NewsItem) (float64, bool) {
	if !a.oracle.Available() {
		return 0, false
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	prompt := fmt.Sprintf(
		"Give a single sentiment score between -1 and 1 for these headlines:\n%s\nScore:",
		strings.Join(titles, "\n"))

	out, err := a.oracle.Complete(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "Sentiment oracle unavailable, using lexicon", "error", err)
		return 0, false
	}
	score, ok := oracle.ExtractFirstNumber(out)
	if !ok {
		logger.Warn(ctx, "Sentiment oracle returned no score, using lexicon")
		return 0, false
	}
	return score, true
}

// Label buckets a score for display: >0.1 positive, <-0.1 negative,
// otherwise neutral.
func Label(score float64) string {
	switch {
	case score > 0.1:
		return LabelPositive
	case score < -0.1:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
