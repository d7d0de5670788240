package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-trade/internal/types"
)

func TestDiscordNotifier_Disabled(t *testing.T) {
	n := NewDiscordNotifier("")

	assert.False(t, n.Enabled())
	assert.NoError(t, n.Send(context.Background(), "ignored"))
}

func TestDiscordNotifier_SendSimulation(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	result := types.SimulationResult{
		DailyValues: []types.DailyValue{{Date: "2026-01-06", Value: 1050}},
		Trades:      []types.TradeRecord{{Action: types.ActionBuy}},
	}

	require.NoError(t, n.SendSimulation(context.Background(), "AAPL", 1000, result))
	assert.Contains(t, got["content"], "AAPL")
	assert.Contains(t, got["content"], "$1000.00 -> $1050.00")
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad webhook", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL)
	assert.Error(t, n.Send(context.Background(), "hello"))
}
