package nlx402

import (
	"io"
	"log/slog"
	"time"

	"github.com/nlx402/client-go/internal/api"
	"github.com/nlx402/client-go/metrics"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the facilitator used when WithBaseURL is not given.
	DefaultBaseURL = api.DefaultBaseURL
	// DefaultTotalPrice is sent as x-total-price when a quote has no price.
	DefaultTotalPrice = "0.5"

	defaultTimeout = api.DefaultTimeout
)

// Doer performs HTTP requests on behalf of the client. *http.Client
// satisfies it. The client reuses one Doer for every call, so it must be
// safe for concurrent use if the Client is shared between goroutines.
type Doer = api.Doer

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	apiKey     string
	httpClient Doer
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// quoteConfig holds configuration for quote requests.
type quoteConfig struct {
	totalPrice Price
}

// Option configures the client.
type Option func(*clientConfig)

// QuoteOption configures a quote request.
type QuoteOption func(*quoteConfig)

// WithBaseURL sets the facilitator base URL. Trailing slashes are removed.
// Default: https://pay.thrt.ai
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key sent as x-api-key on authenticated calls.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithHTTPClient sets the transport used for every call.
func WithHTTPClient(client Doer) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout of the default HTTP client.
// It has no effect when WithHTTPClient is used.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets a logger that receives one DEBUG record per operation.
// If not provided, nothing is logged.
func WithLogger(log *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = log
	}
}

// WithMetrics sets the recorder for per-operation counters and latency.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *clientConfig) {
		c.metrics = r
	}
}

// WithTotalPrice sets the x-total-price value for a quote.
// Default: 0.5
func WithTotalPrice(p Price) QuoteOption {
	return func(c *quoteConfig) {
		c.totalPrice = p
	}
}

// WithTotalPriceString is shorthand for WithTotalPrice(PriceFromString(s)).
func WithTotalPriceString(s string) QuoteOption {
	return WithTotalPrice(PriceFromString(s))
}

// WithTotalPriceDecimal is shorthand for WithTotalPrice(PriceFromDecimal(d)).
func WithTotalPriceDecimal(d decimal.Decimal) QuoteOption {
	return WithTotalPrice(PriceFromDecimal(d))
}

func newClientConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.metrics == nil {
		cfg.metrics = metrics.NoopRecorder{}
	}
	return cfg
}

func newQuoteConfig(opts []QuoteOption) *quoteConfig {
	cfg := &quoteConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
