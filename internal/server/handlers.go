package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-trade/internal/anomaly"
	"ai-trade/internal/logger"
	"ai-trade/internal/marketdata"
	"ai-trade/internal/sentiment"
	"ai-trade/internal/sim"
	"ai-trade/internal/tickers"
	"ai-trade/internal/types"
)

type stockResponse struct {
	Symbol      string           `json:"symbol"`
	Period      string           `json:"period"`
	Interval    string           `json:"interval"`
	Bars        types.Series     `json:"bars"`
	News        []types.NewsItem `json:"news"`
	Sentiment   float64          `json:"sentiment"`
	Label       string           `json:"sentiment_label"`
	Predictions []float64        `json:"predictions"`
	Explanation string           `json:"explanation,omitempty"`
}

type simulateRequest struct {
	Balance float64 `json:"balance"`
	Days    int     `json:"days"`
	Period  string  `json:"period"`
}

type anomaliesResponse struct {
	Symbol  string                `json:"symbol"`
	Date    string                `json:"date"`
	Windows []types.AnomalyWindow `json:"windows"`
	Stats   anomaly.Stats         `json:"stats"`
}

func (s *Server) handleListTickers(w http.ResponseWriter, r *http.Request) {
	var (
		symbols []string
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		symbols, err = s.tickers.Search(r.Context(), q)
	} else {
		symbols, err = s.tickers.List(r.Context())
	}
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Listing tickers failed", err)
		writeError(w, http.StatusInternalServerError, "could not load saved tickers")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, map[string][]string{"tickers": symbols})
}

func (s *Server) handleAddTicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if err := s.tickers.Add(r.Context(), req.Symbol); err != nil {
		if errors.Is(err, tickers.ErrExists) {
			writeError(w, http.StatusConflict, "ticker already saved")
			return
		}
		logger.ErrorWithErr(r.Context(), "Saving ticker failed", err, "symbol", req.Symbol)
		writeError(w, http.StatusInternalServerError, "could not save ticker")
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"symbol": strings.ToUpper(strings.TrimSpace(req.Symbol))})
}

func (s *Server) handleRemoveTicker(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if err := s.tickers.Remove(r.Context(), symbol); err != nil {
		logger.ErrorWithErr(r.Context(), "Removing ticker failed", err, "symbol", symbol)
		writeError(w, http.StatusInternalServerError, "could not remove ticker")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStock runs the read-only pipeline: bars, news, sentiment, forecast.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(r.PathValue("symbol"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1d"
	}

	series, err := s.market.History(ctx, symbol, period, interval)
	if err != nil {
		s.writeMarketError(ctx, w, symbol, err)
		return
	}

	news := s.news.Fetch(ctx, symbol)
	score := s.scorer.Score(ctx, news)
	preds := s.forecast.Predict(ctx, series, s.cfg.Forecast.DefaultHorizonDays, score)

	resp := stockResponse{
		Symbol:      symbol,
		Period:      period,
		Interval:    interval,
		Bars:        series,
		News:        news,
		Sentiment:   score,
		Label:       sentiment.Label(score),
		Predictions: preds,
	}
	if len(preds) > 0 {
		resp.Explanation = s.forecast.Explain(ctx, preds, score, news)
	}
	if resp.News == nil {
		resp.News = []types.NewsItem{}
	}
	writeJSON(w, resp)
}

// handleSimulate runs the full pipeline and replays the trading policy over
// the forecast.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(r.PathValue("symbol"))

	req := simulateRequest{
		Balance: s.cfg.Forecast.DefaultBalance,
		Days:    s.cfg.Forecast.DefaultHorizonDays,
		Period:  "1mo",
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Balance <= 0 {
		req.Balance = s.cfg.Forecast.DefaultBalance
	}
	if req.Days < 1 {
		req.Days = s.cfg.Forecast.DefaultHorizonDays
	}
	if req.Period == "" {
		req.Period = "1mo"
	}

	series, err := s.market.History(ctx, symbol, req.Period, "1d")
	if err != nil {
		s.writeMarketError(ctx, w, symbol, err)
		return
	}

	news := s.news.Fetch(ctx, symbol)
	score := s.scorer.Score(ctx, news)
	preds := s.forecast.Predict(ctx, series, req.Days, score)
	if len(preds) == 0 {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("not enough history for %s to generate predictions", symbol))
		return
	}

	result := sim.Run(series.LastClose(), series[len(series)-1].Time(), preds, req.Balance)

	if s.notifier != nil && s.notifier.Enabled() {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.SendSimulation(nctx, symbol, req.Balance, result); err != nil {
				logger.Warn(nctx, "Simulation notification failed", "symbol", symbol, "error", err)
			}
		}()
	}

	writeJSON(w, map[string]any{
		"symbol":      symbol,
		"balance":     req.Balance,
		"days":        req.Days,
		"sentiment":   score,
		"predictions": preds,
		"result":      result,
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(r.PathValue("symbol"))

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	threshold := s.cfg.Anomaly.DefaultThresholdSigma
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative number")
			return
		}
		threshold = f
	}

	ticks, err := s.market.Ticks(ctx, symbol, date)
	if err != nil {
		s.writeMarketError(ctx, w, symbol, err)
		return
	}

	windows, stats := anomaly.Detect(ticks, threshold)
	if windows == nil {
		windows = []types.AnomalyWindow{}
	}
	writeJSON(w, anomaliesResponse{
		Symbol:  symbol,
		Date:    date,
		Windows: windows,
		Stats:   stats,
	})
}

func (s *Server) writeMarketError(ctx context.Context, w http.ResponseWriter, symbol string, err error) {
	if errors.Is(err, marketdata.ErrNoData) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no data available for %s", symbol))
		return
	}
	logger.ErrorWithErr(ctx, "Market data fetch failed", err, "symbol", symbol)
	writeError(w, http.StatusBadGateway, fmt.Sprintf("market data unavailable for %s", symbol))
}
