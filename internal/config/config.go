package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials are read from the environment, never from the config file, so
// every fallback path can be exercised in tests with a zero-value Config.
type Credentials struct {
	PolygonAPIKey     string
	OpenAIAPIKey      string
	DiscordWebhookURL string
}

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Market struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"market"`
	Oracle struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"oracle"`
	Forecast struct {
		DefaultHorizonDays int     `yaml:"default_horizon_days"`
		DefaultBalance     float64 `yaml:"default_balance"`
		CloseWindow        int     `yaml:"close_window"`
	} `yaml:"forecast"`
	News struct {
		MaxItems       int  `yaml:"max_items"`
		EnableScraper  bool `yaml:"enable_scraper"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`
	Anomaly struct {
		DefaultThresholdSigma float64 `yaml:"default_threshold_sigma"`
	} `yaml:"anomaly"`
	DBPath string `yaml:"db_path"`

	Creds Credentials `yaml:"-"`
}

// Default returns a Config with all defaults applied and credentials read
// from the environment.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.Creds = credsFromEnv()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://api.polygon.io"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gpt-3.5-turbo"
	}
	if c.Oracle.MaxTokens == 0 {
		c.Oracle.MaxTokens = 300
	}
	if c.Forecast.DefaultHorizonDays == 0 {
		c.Forecast.DefaultHorizonDays = 5
	}
	if c.Forecast.DefaultBalance == 0 {
		c.Forecast.DefaultBalance = 10000
	}
	if c.Forecast.CloseWindow == 0 {
		c.Forecast.CloseWindow = 180
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 5
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.Anomaly.DefaultThresholdSigma == 0 {
		c.Anomaly.DefaultThresholdSigma = 3.0
	}
	if c.DBPath == "" {
		c.DBPath = "stocks.db"
	}
}

func credsFromEnv() Credentials {
	return Credentials{
		PolygonAPIKey:     os.Getenv("POLYGON_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	}
}

func (c *Config) Validate() error {
	if c.Forecast.DefaultHorizonDays < 1 {
		return fmt.Errorf("forecast.default_horizon_days must be >= 1, got %d", c.Forecast.DefaultHorizonDays)
	}
	if c.Forecast.DefaultBalance <= 0 {
		return fmt.Errorf("forecast.default_balance must be > 0, got %.2f", c.Forecast.DefaultBalance)
	}
	if c.Anomaly.DefaultThresholdSigma < 0 {
		return fmt.Errorf("anomaly.default_threshold_sigma must be >= 0, got %.2f", c.Anomaly.DefaultThresholdSigma)
	}
	if c.Market.TimeoutSeconds <= 0 {
		return fmt.Errorf("market.timeout_seconds must be > 0, got %d", c.Market.TimeoutSeconds)
	}
	return nil
}

// Load reads a yaml config file, applies defaults, pulls credentials from
// the environment, and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.Creds = credsFromEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
