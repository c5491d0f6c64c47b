package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the analysis-service client.
type Config struct {
	APIKey    string        // if empty, falls back to env OPENROUTER_API_KEY
	BaseURL   string        // default https://openrouter.ai/api/v1
	Model     string        // e.g., "gpt-3.5-turbo"
	MaxTokens int           // completion cap, default 800
	Timeout   time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
