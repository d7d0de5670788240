// Package server exposes the forecasting, simulation, and anomaly pipelines
// over a JSON HTTP API, plus the ticker bookmark CRUD the UI needs.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ai-trade/internal/config"
	"ai-trade/internal/logger"
	"ai-trade/internal/types"
)

// MarketData supplies historical bars and raw ticks. Its failure is fatal
// to the request that needed it.
type MarketData interface {
	History(ctx context.Context, symbol, period, interval string) (types.Series, error)
	Ticks(ctx context.Context, symbol, date string) ([]types.Tick, error)
}

// NewsFetcher returns recent headlines; an empty list is a valid answer.
type NewsFetcher interface {
	Fetch(ctx context.Context, symbol string) []types.NewsItem
}

// Scorer maps headlines to a sentiment score in [-1, 1].
type Scorer interface {
	Score(ctx context.Context, items []types.NewsItem) float64
}

// Forecaster produces predicted close prices and a short rationale.
type Forecaster interface {
	Predict(ctx context.Context, series types.Series, horizonDays int, sentiment float64) []float64
	Explain(ctx context.Context, predictions []float64, score float64, items []types.NewsItem) string
}

// TickerStore persists bookmarked symbols.
type TickerStore interface {
	Add(ctx context.Context, symbol string) error
	List(ctx context.Context) ([]string, error)
	Search(ctx context.Context, q string) ([]string, error)
	Remove(ctx context.Context, symbol string) error
}

// Notifier pushes simulation summaries to an external channel.
type Notifier interface {
	Enabled() bool
	SendSimulation(ctx context.Context, symbol string, balance float64, result types.SimulationResult) error
}

// Server wires the pipelines behind HTTP handlers.
type Server struct {
	cfg      *config.Config
	market   MarketData
	news     NewsFetcher
	scorer   Scorer
	forecast Forecaster
	tickers  TickerStore
	notifier Notifier
}

// New creates a Server. notifier may be nil.
func New(cfg *config.Config, market MarketData, news NewsFetcher, scorer Scorer, forecast Forecaster, store TickerStore, notifier Notifier) *Server {
	return &Server{
		cfg:      cfg,
		market:   market,
		news:     news,
		scorer:   scorer,
		forecast: forecast,
		tickers:  store,
		notifier: notifier,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tickers", s.handleListTickers)
	mux.HandleFunc("POST /api/tickers", s.handleAddTicker)
	mux.HandleFunc("DELETE /api/tickers/{symbol}", s.handleRemoveTicker)
	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleStock)
	mux.HandleFunc("POST /api/stocks/{symbol}/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/anomalies/{symbol}", s.handleAnomalies)
	return corsMiddleware(mux)
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// writeError sends a single human-readable message, never a stack trace.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
