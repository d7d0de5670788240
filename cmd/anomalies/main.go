// Command anomalies scans one day of trade ticks for a symbol and prints the
// minutes whose trade count spiked above the statistical threshold.
//
//	anomalies TICKER [YYYY-MM-DD] [threshold]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ai-trade/internal/anomaly"
	"ai-trade/internal/config"
	"ai-trade/internal/logger"
	"ai-trade/internal/marketdata"
	"ai-trade/internal/trace"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: anomalies TICKER [YYYY-MM-DD] [threshold]")
		os.Exit(2)
	}
	symbol := os.Args[1]

	cfg := config.Default()
	date := time.Now().UTC().Format("2006-01-02")
	if len(os.Args) > 2 {
		if _, err := time.Parse("2006-01-02", os.Args[2]); err != nil {
			log.Fatalf("invalid date %q, want YYYY-MM-DD", os.Args[2])
		}
		date = os.Args[2]
	}
	threshold := cfg.Anomaly.DefaultThresholdSigma
	if len(os.Args) > 3 {
		f, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil || f < 0 {
			log.Fatalf("invalid threshold %q", os.Args[3])
		}
		threshold = f
	}

	logger.Init()
	if err := trace.Init(); err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	defer trace.Shutdown(ctx)

	market := marketdata.New(cfg.Creds.PolygonAPIKey,
		marketdata.WithTimeout(time.Duration(cfg.Market.TimeoutSeconds)*time.Second))

	ticks, err := market.Ticks(ctx, symbol, date)
	if err != nil {
		log.Fatal(err)
	}

	windows, stats := anomaly.Detect(ticks, threshold)
	fmt.Printf("%s %s: %d ticks across the day, mean %.2f trades/min, stddev %.2f\n",
		symbol, date, len(ticks), stats.Mean, stats.StdDev)
	if len(windows) == 0 {
		fmt.Println("no anomalous windows")
		return
	}
	for _, w := range windows {
		fmt.Printf("%s  %d trades\n", w.WindowStart.Format("15:04"), w.TradeCount)
	}
}
