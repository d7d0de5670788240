package predict

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-trade/internal/oracle"
	"ai-trade/internal/types"
)

func seriesFromCloses(closes []float64) types.Series {
	s := make(types.Series, len(closes))
	for i, c := range closes {
		s[i] = types.Bar{
			Ts:    int64(i+1) * 86_400_000,
			Open:  c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return s
}

func TestAutoregress_LinearDiffTrend(t *testing.T) {
	// Closes 1,2,4,7,11 give diffs 1,2,3,4. Regressing each diff on the
	// previous one yields slope 1, intercept 1, so the next diffs are
	// 5, 6, 7 and the prices 16, 22, 29.
	got := Autoregress([]float64{1, 2, 4, 7, 11}, 3, 0)

	require.Len(t, got, 3)
	assert.InDelta(t, 16.0, got[0], 1e-9)
	assert.InDelta(t, 22.0, got[1], 1e-9)
	assert.InDelta(t, 29.0, got[2], 1e-9)
}

func TestAutoregress_ConstantDiffs(t *testing.T) {
	// All diffs equal: the regression denominator is zero, slope falls back
	// to 0, and the intercept carries the constant step forward.
	got := Autoregress([]float64{10, 11, 12, 13}, 3, 0)

	require.Len(t, got, 3)
	assert.InDelta(t, 14.0, got[0], 1e-9)
	assert.InDelta(t, 15.0, got[1], 1e-9)
	assert.InDelta(t, 16.0, got[2], 1e-9)
}

func TestAutoregress_SentimentMultiplier(t *testing.T) {
	closes := []float64{1, 2, 4, 7, 11}

	neutral := Autoregress(closes, 1, 0.05)
	positive := Autoregress(closes, 1, 0.5)
	negative := Autoregress(closes, 1, -0.5)

	require.Len(t, neutral, 1)
	assert.InDelta(t, 16.0, neutral[0], 1e-9, "scores inside (-0.1, 0.1] are neutral")
	assert.InDelta(t, 11+5*1.05, positive[0], 1e-9)
	assert.InDelta(t, 11+5*0.95, negative[0], 1e-9)
}

func TestAutoregress_Deterministic(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 104, 108}

	a := Autoregress(closes, 5, 0.3)
	b := Autoregress(closes, 5, 0.3)
	assert.Equal(t, a, b)
}

func TestAutoregress_TooShort(t *testing.T) {
	assert.Nil(t, Autoregress([]float64{1, 2}, 3, 0))
	assert.Nil(t, Autoregress([]float64{1, 2, 3}, 0, 0))
}

func TestPredict_FallsBackWithoutOracle(t *testing.T) {
	p := NewPredictor(nil, 0)
	series := seriesFromCloses([]float64{1, 2, 4, 7, 11})

	got := p.Predict(context.Background(), series, 3, 0)

	require.Len(t, got, 3)
	assert.InDelta(t, 16.0, got[0], 1e-9)
}

func TestPredict_ShortSeries(t *testing.T) {
	p := NewPredictor(nil, 0)

	assert.Nil(t, p.Predict(context.Background(), seriesFromCloses([]float64{1, 2}), 3, 0))
	assert.Nil(t, p.Predict(context.Background(), seriesFromCloses([]float64{1, 2, 3}), 0, 0))
}

func oracleAnswering(t *testing.T, content string) *oracle.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"` + content + `"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return oracle.New(oracle.Config{APIKey: "test", BaseURL: srv.URL})
}

func TestPredict_UsesOracleWhenCountMatches(t *testing.T) {
	p := NewPredictor(oracleAnswering(t, "101.5, 102.0, 103.25"), 0)
	series := seriesFromCloses([]float64{99, 100, 101})

	got := p.Predict(context.Background(), series, 3, 0)

	assert.Equal(t, []float64{101.5, 102.0, 103.25}, got)
}

func TestPredict_RejectsOracleOnWrongCount(t *testing.T) {
	// Two values for a three-day horizon: the whole answer is discarded
	// and the autoregression result is returned instead.
	p := NewPredictor(oracleAnswering(t, "101.5, 102.0"), 0)
	series := seriesFromCloses([]float64{1, 2, 4, 7, 11})

	got := p.Predict(context.Background(), series, 3, 0)

	require.Len(t, got, 3)
	assert.InDelta(t, 16.0, got[0], 1e-9)
}

func TestExplain_TemplateFallback(t *testing.T) {
	p := NewPredictor(nil, 0)

	out := p.Explain(context.Background(), []float64{101, 102}, 0.42, nil)
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "0.420")

	assert.Empty(t, p.Explain(context.Background(), nil, 0.42, nil))
}
