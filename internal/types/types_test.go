package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesValidate(t *testing.T) {
	valid := Series{
		{Ts: 1000, Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10},
		{Ts: 2000, Open: 1.5, High: 2, Low: 1, Close: 1.8, Volume: 12},
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, Series{}.Validate())

	outOfOrder := Series{
		{Ts: 2000, Open: 1, High: 2, Low: 1, Close: 1.5},
		{Ts: 1000, Open: 1, High: 2, Low: 1, Close: 1.5},
	}
	assert.Error(t, outOfOrder.Validate())

	nonPositive := Series{{Ts: 1000, Open: 1, High: 2, Low: 1, Close: 0}}
	assert.Error(t, nonPositive.Validate())
}

func TestSeriesAccessors(t *testing.T) {
	s := Series{
		{Ts: 1000, Open: 1, High: 2, Low: 1, Close: 10},
		{Ts: 2000, Open: 1, High: 2, Low: 1, Close: 20},
	}

	assert.Equal(t, []float64{10, 20}, s.Closes())
	assert.Equal(t, 20.0, s.LastClose())
	assert.Equal(t, time.UnixMilli(2000).UTC(), s[1].Time())
}

func TestSimulationResultFinalValue(t *testing.T) {
	empty := SimulationResult{}
	assert.Equal(t, 1000.0, empty.FinalValue(1000))

	r := SimulationResult{DailyValues: []DailyValue{{Value: 900}, {Value: 1100}}}
	require.Equal(t, 1100.0, r.FinalValue(1000))
}
