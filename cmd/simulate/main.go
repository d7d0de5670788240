// Command simulate runs the forecast and trading simulation for one symbol
// and prints the result as JSON.
//
//	simulate TICKER [balance] [days]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ai-trade/internal/config"
	"ai-trade/internal/logger"
	"ai-trade/internal/marketdata"
	"ai-trade/internal/news"
	"ai-trade/internal/oracle"
	"ai-trade/internal/predict"
	"ai-trade/internal/sentiment"
	"ai-trade/internal/sim"
	"ai-trade/internal/trace"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: simulate TICKER [balance] [days]")
		os.Exit(2)
	}
	symbol := os.Args[1]

	cfg := config.Default()
	balance := cfg.Forecast.DefaultBalance
	days := cfg.Forecast.DefaultHorizonDays
	if len(os.Args) > 2 {
		b, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil || b <= 0 {
			log.Fatalf("invalid balance %q", os.Args[2])
		}
		balance = b
	}
	if len(os.Args) > 3 {
		d, err := strconv.Atoi(os.Args[3])
		if err != nil || d < 1 {
			log.Fatalf("invalid days %q", os.Args[3])
		}
		days = d
	}

	logger.Init()
	if err := trace.Init(); err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	defer trace.Shutdown(ctx)

	market := marketdata.New(cfg.Creds.PolygonAPIKey,
		marketdata.WithTimeout(time.Duration(cfg.Market.TimeoutSeconds)*time.Second))
	llm := oracle.New(oracle.Config{
		APIKey:      cfg.Creds.OpenAIAPIKey,
		Model:       cfg.Oracle.Model,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
	})
	fetcher := news.NewFetcher(cfg.Creds.PolygonAPIKey, news.WithMaxItems(cfg.News.MaxItems))

	series, err := market.History(ctx, symbol, "1mo", "1d")
	if err != nil {
		log.Fatal(err)
	}

	items := fetcher.Fetch(ctx, symbol)
	score := sentiment.NewAnalyzer(llm).Score(ctx, items)
	preds := predict.NewPredictor(llm, cfg.Forecast.CloseWindow).Predict(ctx, series, days, score)
	if len(preds) == 0 {
		log.Fatalf("not enough history for %s to generate predictions", symbol)
	}

	result := sim.Run(series.LastClose(), series[len(series)-1].Time(), preds, balance)

	out, err := json.MarshalIndent(map[string]any{
		"symbol":      symbol,
		"balance":     balance,
		"days":        days,
		"sentiment":   score,
		"predictions": preds,
		"result":      result,
		"final_value": result.FinalValue(balance),
	}, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
