// Package predict produces a short-horizon sequence of forecast close
// prices from a historical series and a sentiment score. The oracle
// strategy is tried first when credentials exist and its answer is accepted
// only when it contains exactly the requested number of values; otherwise
// the deterministic AR(1) fallback runs.
package predict

import (
	"context"
	"fmt"
	"strings"

	"ai-trade/internal/logger"
	"ai-trade/internal/oracle"
	"ai-trade/internal/types"
)

// Predictor forecasts close prices.
type Predictor struct {
	oracle      *oracle.Client
	closeWindow int
}

// NewPredictor creates a Predictor. oracleClient may be nil or without
// credentials. closeWindow bounds how much series tail is sent to the
// oracle; <=0 means the default of 180 bars.
func NewPredictor(oracleClient *oracle.Client, closeWindow int) *Predictor {
	if closeWindow <= 0 {
		closeWindow = 180
	}
	return &Predictor{oracle: oracleClient, closeWindow: closeWindow}
}

// Predict returns exactly horizonDays predicted close prices, or an empty
// slice when the series has fewer than 3 bars. First differences need two
// points and the slope regression needs two difference pairs, so three bars
// is the hard floor.
func (p *Predictor) Predict(ctx context.Context, series types.Series, horizonDays int, sentiment float64) []float64 {
	if len(series) < 3 || horizonDays < 1 {
		return nil
	}

	if preds, ok := p.oracleForecast(ctx, series, horizonDays, sentiment); ok {
		return preds
	}
	return Autoregress(series.Closes(), horizonDays, sentiment)
}

// oracleForecast asks the oracle for exactly horizonDays values. A response
// with any other count of numeric tokens is discarded whole; partial
// results are never used.
func (p *Predictor) oracleForecast(ctx context.Context, series types.Series, horizonDays int, sentiment float64) ([]float64, bool) {
	if !p.oracle.Available() {
		return nil, false
	}

	closes := series.Closes()
	if len(closes) > p.closeWindow {
		closes = closes[len(closes)-p.closeWindow:]
	}
	rounded := make([]string, len(closes))
	for i, c := range closes {
		rounded[i] = fmt.Sprintf("%.2f", c)
	}
	prompt := fmt.Sprintf(
		"Predict the next %d closing prices based on this series: [%s] and an average news sentiment of %.3f. Respond with numbers only.",
		horizonDays, strings.Join(rounded, ", "), sentiment)

	out, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "Forecast oracle unavailable, using autoregression", "error", err)
		return nil, false
	}
	nums := oracle.ExtractNumbers(out)
	if len(nums) != horizonDays {
		logger.Warn(ctx, "Forecast oracle returned wrong value count, using autoregression",
			"want", horizonDays, "got", len(nums))
		return nil, false
	}
	return nums, true
}

// Autoregress is the deterministic fallback: an order-1 autoregression on
// first differences, fit by ordinary least squares, with a sentiment
// multiplier applied to each projected difference. Predicted prices are not
// clamped; a strong downtrend may legitimately extrapolate below zero.
func Autoregress(closes []float64, horizonDays int, sentiment float64) []float64 {
	if len(closes) < 3 || horizonDays < 1 {
		return nil
	}

	diffs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		diffs[i-1] = closes[i] - closes[i-1]
	}

	// Regress diffs[1:] on diffs[:-1].
	x := diffs[:len(diffs)-1]
	y := diffs[1:]
	slope, intercept := olsFit(x, y)

	currentPrice := closes[len(closes)-1]
	lastDiff := diffs[len(diffs)-1]
	predictions := make([]float64, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		nextDiff := intercept + slope*lastDiff
		switch {
		case sentiment > 0.1:
			nextDiff *= 1.05
		case sentiment < -0.1:
			nextDiff *= 0.95
		}
		currentPrice += nextDiff
		predictions = append(predictions, currentPrice)
		lastDiff = nextDiff
	}
	return predictions
}

// olsFit returns the least-squares slope and intercept of y on x. A zero
// denominator (constant x) yields slope 0.
func olsFit(x, y []float64) (slope, intercept float64) {
	n := float64(len(x))
	var xMean, yMean float64
	for i := range x {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= n
	yMean /= n

	var num, denom float64
	for i := range x {
		num += (x[i] - xMean) * (y[i] - yMean)
		denom += (x[i] - xMean) * (x[i] - xMean)
	}
	if denom != 0 {
		slope = num / denom
	}
	intercept = yMean - slope*xMean
	return slope, intercept
}
