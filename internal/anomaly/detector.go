// Package anomaly flags minutes of unusually heavy trading activity within
// a single day of raw trade ticks.
package anomaly

import (
	"math"
	"sort"
	"time"

	"ai-trade/internal/types"
)

// DefaultThresholdSigma is the flagging threshold when the caller does not
// specify one.
const DefaultThresholdSigma = 3.0

// Stats holds the per-window count statistics the threshold is measured
// against.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Detect buckets ticks into fixed one-minute windows and flags every window
// whose trade count exceeds mean + thresholdSigma*stddev.
//
// Only windows that actually received at least one tick enter the
// statistics; empty minutes are absent, not zero. StdDev is the sample
// standard deviation (n-1). With no ticks the result is empty and the
// stats are zero. Flagged windows are ordered by window start.
func Detect(ticks []types.Tick, thresholdSigma float64) ([]types.AnomalyWindow, Stats) {
	if len(ticks) == 0 {
		return nil, Stats{}
	}

	counts := make(map[int64]int)
	for _, t := range ticks {
		minute := t.Ts - t.Ts%int64(time.Minute)
		counts[minute]++
	}

	starts := make([]int64, 0, len(counts))
	for m := range counts {
		starts = append(starts, m)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	mean, stddev := meanStd(counts, starts)

	threshold := mean + thresholdSigma*stddev
	var flagged []types.AnomalyWindow
	for _, m := range starts {
		if float64(counts[m]) > threshold {
			flagged = append(flagged, types.AnomalyWindow{
				WindowStart: time.Unix(0, m).UTC(),
				TradeCount:  counts[m],
			})
		}
	}
	return flagged, Stats{Mean: mean, StdDev: stddev}
}

func meanStd(counts map[int64]int, starts []int64) (mean, stddev float64) {
	n := float64(len(starts))
	for _, m := range starts {
		mean += float64(counts[m])
	}
	mean /= n

	if len(starts) < 2 {
		return mean, 0
	}
	var ss float64
	for _, m := range starts {
		d := float64(counts[m]) - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
