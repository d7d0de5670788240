package types

import (
	"fmt"
	"time"
)

// Bar is a single OHLCV bar. Ts is the bar start in unix milliseconds.
type Bar struct {
	Ts     int64   `json:"ts"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Time returns the bar timestamp as UTC time.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Ts).UTC()
}

// Series is an ordered sequence of bars for a single symbol.
type Series []Bar

// Validate checks the series invariants: non-empty, strictly increasing
// timestamps, and strictly positive prices. Violations indicate corrupt
// upstream data and reject the whole series.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty series")
	}
	for i, b := range s {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d: non-positive price", i)
		}
		if i > 0 && b.Ts <= s[i-1].Ts {
			return fmt.Errorf("bar %d: timestamp not increasing", i)
		}
	}
	return nil
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// LastClose returns the most recent close price.
func (s Series) LastClose() float64 {
	return s[len(s)-1].Close
}

// NewsItem is one headline for a symbol. Fetched fresh per request and
// never persisted.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Publisher string `json:"publisher,omitempty"`
}

// TradeAction is the side of a simulated trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TradeRecord is one executed trade inside a simulation run.
type TradeRecord struct {
	Date   string      `json:"date"`
	Action TradeAction `json:"action"`
	Shares float64     `json:"shares"`
	Price  float64     `json:"price"`
	Value  float64     `json:"value"`
}

// DailyValue is the portfolio value at the end of one simulated day.
type DailyValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SimulationResult is the full outcome of one simulation run.
type SimulationResult struct {
	DailyValues  []DailyValue  `json:"daily_values"`
	Trades       []TradeRecord `json:"trades"`
	AdvisoryNote string        `json:"advisory_note,omitempty"`
}

// FinalValue returns the portfolio value after the last simulated day,
// or the starting balance when no days were simulated.
func (r SimulationResult) FinalValue(startingBalance float64) float64 {
	if n := len(r.DailyValues); n > 0 {
		return r.DailyValues[n-1].Value
	}
	return startingBalance
}

// Tick is a single trade event. Ts is the exchange timestamp in unix
// nanoseconds.
type Tick struct {
	Ts    int64   `json:"ts"`
	Price float64 `json:"price,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// AnomalyWindow is a fixed one-minute window whose trade count exceeded
// the detection threshold.
type AnomalyWindow struct {
	WindowStart time.Time `json:"window_start"`
	TradeCount  int       `json:"trade_count"`
}
