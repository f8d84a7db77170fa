package nlx402

import (
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/nlx402/client-go/metrics"
	"github.com/shopspring/decimal"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultBaseURL != "https://pay.thrt.ai" {
		t.Errorf("DefaultBaseURL = %s, want https://pay.thrt.ai", DefaultBaseURL)
	}
	if defaultTimeout != 30*time.Second {
		t.Errorf("defaultTimeout = %v, want 30s", defaultTimeout)
	}
	if DefaultTotalPrice != "0.5" {
		t.Errorf("DefaultTotalPrice = %s, want 0.5", DefaultTotalPrice)
	}
}

func TestNewClientConfig_Defaults(t *testing.T) {
	cfg := newClientConfig(nil)
	if cfg.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", cfg.baseURL, DefaultBaseURL)
	}
	if cfg.logger == nil {
		t.Error("logger is nil, want discard logger")
	}
	if _, ok := cfg.metrics.(metrics.NoopRecorder); !ok {
		t.Errorf("metrics = %T, want NoopRecorder", cfg.metrics)
	}
}

func TestWithBaseURL(t *testing.T) {
	cfg := &clientConfig{}
	WithBaseURL("https://custom.example.com")(cfg)
	if cfg.baseURL != "https://custom.example.com" {
		t.Errorf("baseURL = %s, want https://custom.example.com", cfg.baseURL)
	}
}

func TestWithAPIKey(t *testing.T) {
	cfg := &clientConfig{}
	WithAPIKey("key-1")(cfg)
	if cfg.apiKey != "key-1" {
		t.Errorf("apiKey = %s, want key-1", cfg.apiKey)
	}
}

func TestWithHTTPClient(t *testing.T) {
	cfg := &clientConfig{}
	customClient := &http.Client{Timeout: 99 * time.Second}
	WithHTTPClient(customClient)(cfg)
	if cfg.httpClient != customClient {
		t.Error("httpClient was not set")
	}
}

func TestWithTimeout(t *testing.T) {
	cfg := &clientConfig{}
	WithTimeout(120 * time.Second)(cfg)
	if cfg.timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", cfg.timeout)
	}
}

func TestWithUserAgent(t *testing.T) {
	cfg := &clientConfig{}
	WithUserAgent("agent/1.0")(cfg)
	if cfg.userAgent != "agent/1.0" {
		t.Errorf("userAgent = %s, want agent/1.0", cfg.userAgent)
	}
}

func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := newClientConfig([]Option{WithLogger(logger)})
	if cfg.logger != logger {
		t.Error("logger was not set")
	}
}

func TestWithMetrics(t *testing.T) {
	rec := &captureRecorder{}
	cfg := newClientConfig([]Option{WithMetrics(rec)})
	if cfg.metrics != rec {
		t.Error("metrics was not set")
	}
}

func TestQuoteOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  QuoteOption
		want string
	}{
		{"price", WithTotalPrice(PriceFromFloat(1.5)), "1.5"},
		{"string", WithTotalPriceString("0.002"), "0.002"},
		{"decimal", WithTotalPriceDecimal(decimal.NewFromInt(4)), "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newQuoteConfig([]QuoteOption{tt.opt})
			if got := cfg.totalPrice.String(); got != tt.want {
				t.Errorf("totalPrice = %s, want %s", got, tt.want)
			}
		})
	}

	if got := newQuoteConfig(nil).totalPrice.String(); got != "0.5" {
		t.Errorf("default totalPrice = %s, want 0.5", got)
	}
}
