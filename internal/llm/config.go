package llm

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/"
	// DefaultModel replaces the retired text-davinci-002 on the completions API.
	DefaultModel = "gpt-3.5-turbo-instruct"
)

type Config struct {
	BaseURL string
	Model   string

	// UpstreamTimeout bounds a single completion call. Zero means the call is
	// only bounded by the caller's context.
	UpstreamTimeout time.Duration

	// Optional connection pool settings
	MaxIdleConns        int // default: 100
	MaxIdleConnsPerHost int // default: 100

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

// Validate checks required fields only.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	if c.Model == "" {
		return errors.New("Model is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	// the SDK resolves paths relative to the base URL
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 100
	}

	return cfg
}

type client struct {
	cfg        Config
	httpClient *http.Client
	sdk        openai.Client
	logger     *zap.Logger
}

// NewClient creates a completion client. The client holds no credentials;
// the API key travels with each request.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: defaultTransport(cfg),
		}
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		// one attempt per request
		option.WithMaxRetries(0),
	}
	if cfg.UpstreamTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.UpstreamTimeout))
	}

	return &client{
		cfg:        cfg,
		httpClient: httpClient,
		sdk:        openai.NewClient(opts...),
		logger:     logger.Named("llmclient"),
	}, nil
}

// defaultTransport creates a production-ready HTTP transport
// with connection pooling and reasonable timeouts.
func defaultTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Close releases resources held by the client.
func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
