// Package sim replays a deterministic all-in/all-out trading policy over a
// set of predicted close prices. The policy is intentionally simple: one
// asset, no fees, no slippage, no shorting. The exact guard thresholds and
// their ordering are the contract; do not "improve" them.
package sim

import (
	"time"

	"ai-trade/internal/types"
)

// NoBuyNote is attached when the policy never entered the market, or when
// no prediction ever exceeded the run-start price.
const NoBuyNote = "No buy opportunity found within the forecast window due to a sustained downtrend."

// DefaultBalance is the starting cash when the caller does not specify one.
const DefaultBalance = 10000.0

// Run replays the decision policy over predictions, one step per day.
//
// State starts FLAT at lastClose with the full balance in cash. Each step
// compares the predicted price p against the previous step's reference
// price, except the extra BUY guard p > startPrice, which always references
// the fixed run-start price. That asymmetry is deliberate: it stops the
// policy from buying back in below its original baseline even when the
// short-term trend points up.
func Run(lastClose float64, lastDate time.Time, predictions []float64, startingBalance float64) types.SimulationResult {
	if len(predictions) == 0 || lastClose <= 0 {
		return types.SimulationResult{}
	}
	if startingBalance <= 0 {
		startingBalance = DefaultBalance
	}

	startPrice := lastClose
	currentPrice := lastClose
	cash := startingBalance
	shares := 0.0
	bought := false

	// Structural no-bullish-signal check, computed up front: if nothing in
	// the whole set beats the start price, a BUY can never fire.
	noBuyExpected := true
	for _, p := range predictions {
		if p > startPrice {
			noBuyExpected = false
			break
		}
	}

	result := types.SimulationResult{
		DailyValues: make([]types.DailyValue, 0, len(predictions)),
	}

	for i, p := range predictions {
		date := lastDate.AddDate(0, 0, i+1).Format("2006-01-02")
		var action types.TradeAction

		switch {
		case p > currentPrice && p > startPrice && cash >= currentPrice:
			// Price expected to rise beyond the starting price: all in.
			sharesToBuy := cash / currentPrice
			cash -= sharesToBuy * currentPrice
			shares += sharesToBuy
			action = types.ActionBuy
			bought = true
		case p < currentPrice && shares > 0:
			// Price expected to drop: all out at the current reference.
			cash += shares * currentPrice
			shares = 0
			action = types.ActionSell
		}

		value := cash + shares*p
		result.DailyValues = append(result.DailyValues, types.DailyValue{Date: date, Value: value})

		if action != "" {
			result.Trades = append(result.Trades, types.TradeRecord{
				Date:   date,
				Action: action,
				Shares: shares,
				Price:  currentPrice,
				Value:  value,
			})
		}

		currentPrice = p
	}

	// Still holding after the last prediction: force a final sell.
	if shares > 0 {
		cash += shares * currentPrice
		result.Trades = append(result.Trades, types.TradeRecord{
			Date:   lastDate.AddDate(0, 0, len(predictions)).Format("2006-01-02"),
			Action: types.ActionSell,
			Shares: shares,
			Price:  currentPrice,
			Value:  cash,
		})
		shares = 0
	}

	if !bought || noBuyExpected {
		result.AdvisoryNote = NoBuyNote
	}
	return result
}
