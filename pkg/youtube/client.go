package youtube

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: YouTube Data API key
	HTTPClient *http.Client // Optional: HTTP client (defaults to a client with a 30s timeout)
	BaseURL    string       // Optional: Base URL for API (defaults to the v3 endpoint, used for testing)
	Cache      Cache        // Optional: response cache
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Cache stores raw response bodies by request key. Implementations decide
// when an entry expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Client is the main entry point for YouTube Data API operations.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	cache      Cache
	logger     Logger

	maxRetries     int
	initialBackoff time.Duration
}

const (
	// DefaultBaseURL is the default YouTube Data API v3 endpoint.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultTimeout = 30 * time.Second
)

// NewClient creates a new YouTube API client.
//
// Returns an error if the API key is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube: APIKey is required: %w", ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:         cfg.APIKey,
		httpClient:     httpClient,
		baseURL:        baseURL,
		cache:          cfg.Cache,
		logger:         cfg.Logger,
		maxRetries:     3,
		initialBackoff: 1 * time.Second,
	}, nil
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
