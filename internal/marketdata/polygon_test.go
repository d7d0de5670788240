package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsForPeriod(t *testing.T) {
	assert.Equal(t, 5, BarsForPeriod("5d"))
	assert.Equal(t, 22, BarsForPeriod("1mo"))
	assert.Equal(t, 264, BarsForPeriod("1y"))
	assert.Equal(t, 5, BarsForPeriod("bogus"))
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in       string
		mult     int
		timespan string
	}{
		{"1d", 1, "day"},
		{"5m", 5, "minute"},
		{"15min", 15, "minute"},
		{"1h", 1, "hour"},
		{"", 1, "day"},
		{"weird", 1, "day"},
	}
	for _, tt := range tests {
		mult, timespan := parseInterval(tt.in)
		assert.Equal(t, tt.mult, mult, "interval %q", tt.in)
		assert.Equal(t, tt.timespan, timespan, "interval %q", tt.in)
	}
}

func aggsJSON(status string, n int) string {
	out := fmt.Sprintf(`{"status":%q,"results":[`, status)
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"o":%d,"h":%d,"l":%d,"c":%d,"v":1000,"t":%d}`,
			100+i, 101+i, 99+i, 100+i, int64(i+1)*86_400_000)
	}
	return out + "]}"
}

func TestHistory_TailsToPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(aggsJSON("OK", 10)))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	series, err := c.History(context.Background(), "AAPL", "5d", "1d")
	require.NoError(t, err)
	require.Len(t, series, 5)
	// Trailing bars survive the cut.
	assert.Equal(t, 109.0, series[4].Close)
	assert.Equal(t, 105.0, series[0].Close)
}

func TestHistory_AcceptsDelayedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(aggsJSON("DELAYED", 3)))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	series, err := c.History(context.Background(), "AAPL", "5d", "1d")
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestHistory_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[]}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	_, err := c.History(context.Background(), "MISSING", "5d", "1d")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestHistory_RejectsCorruptSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[
			{"o":100,"h":101,"l":99,"c":100,"v":1000,"t":86400000},
			{"o":0,"h":101,"l":99,"c":-5,"v":1000,"t":172800000}]}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	_, err := c.History(context.Background(), "BAD", "5d", "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid series")
}

func TestHistory_NoAPIKey(t *testing.T) {
	c := New("")

	_, err := c.History(context.Background(), "AAPL", "5d", "1d")
	assert.Error(t, err)
}

func TestTicks_FollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "page2" {
			w.Write([]byte(`{"results":[{"sip_timestamp":180000000000,"price":101,"size":3}]}`))
			return
		}
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		fmt.Fprintf(w, `{"results":[
			{"sip_timestamp":60000000000,"price":100,"size":1},
			{"sip_timestamp":120000000000,"price":100.5,"size":2}],
			"next_url":%q}`, srv.URL+"/v3/trades/AAPL?cursor=page2")
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	ticks, err := c.Ticks(context.Background(), "AAPL", "2026-08-26")
	require.NoError(t, err)
	require.Len(t, ticks, 3)
	assert.Equal(t, int64(60000000000), ticks[0].Ts)
	assert.Equal(t, 101.0, ticks[2].Price)
	assert.Equal(t, 3.0, ticks[2].Size)
}

func TestTicks_EmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New("key", WithBaseURL(srv.URL))

	ticks, err := c.Ticks(context.Background(), "AAPL", "2026-08-26")
	require.NoError(t, err)
	assert.Empty(t, ticks)
}
