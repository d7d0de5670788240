package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-trade/internal/config"
	"ai-trade/internal/logger"
	"ai-trade/internal/marketdata"
	"ai-trade/internal/news"
	"ai-trade/internal/notify"
	"ai-trade/internal/oracle"
	"ai-trade/internal/predict"
	"ai-trade/internal/sentiment"
	"ai-trade/internal/server"
	"ai-trade/internal/tickers"
	"ai-trade/internal/trace"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	var cfg *config.Config
	if _, err := os.Stat(*configPath); err == nil {
		c, err := config.Load(*configPath)
		must(err)
		cfg = c
	} else {
		cfg = config.Default()
	}

	logger.Init()
	must(trace.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	market := marketdata.New(cfg.Creds.PolygonAPIKey,
		marketdata.WithBaseURL(cfg.Market.BaseURL),
		marketdata.WithTimeout(time.Duration(cfg.Market.TimeoutSeconds)*time.Second))

	llm := oracle.New(oracle.Config{
		APIKey:      cfg.Creds.OpenAIAPIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		Model:       cfg.Oracle.Model,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
	})

	newsOpts := []news.Option{news.WithMaxItems(cfg.News.MaxItems)}
	if cfg.News.EnableScraper {
		newsOpts = append(newsOpts, news.WithScraper(
			news.NewScraper(time.Duration(cfg.News.TimeoutSeconds)*time.Second)))
	}
	fetcher := news.NewFetcher(cfg.Creds.PolygonAPIKey, newsOpts...)

	store, err := tickers.Open(cfg.DBPath)
	must(err)
	defer store.Close()

	srv := server.New(cfg,
		market,
		fetcher,
		sentiment.NewAnalyzer(llm),
		predict.NewPredictor(llm, cfg.Forecast.CloseWindow),
		store,
		notify.NewDiscordNotifier(cfg.Creds.DiscordWebhookURL),
	)

	if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = trace.Shutdown(shutdownCtx)
}
