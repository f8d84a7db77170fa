package nlx402

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/nlx402/client-go/internal/api"
	"github.com/nlx402/client-go/internal/apierrors"
	"github.com/nlx402/client-go/metrics"
)

// Client talks to an NLx402 facilitator.
//
// Each method is one blocking request/response exchange; the client keeps
// no state between calls other than its configuration. The journey
// GetQuote → VerifyQuote → (payment submitted elsewhere) → GetPaidAccess is
// the caller's to sequence; no ordering is enforced here.
type Client struct {
	apiClient *api.Client
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// New creates a client. No network call is made.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts)

	apiClient, err := api.NewClient(api.Config{
		BaseURL:    cfg.baseURL,
		APIKey:     cfg.apiKey,
		HTTPClient: cfg.httpClient,
		Timeout:    cfg.timeout,
		UserAgent:  cfg.userAgent,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}, nil
}

// BaseURL returns the facilitator base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

// APIKey returns the API key currently in use.
func (c *Client) APIKey() string {
	return c.apiClient.APIKey()
}

// SetAPIKey sets or replaces the API key used by later calls.
// It is safe to call concurrently with other methods.
func (c *Client) SetAPIKey(key string) {
	c.apiClient.SetAPIKey(key)
}

// GetMetadata returns the facilitator's public metadata: network,
// supported chains and mints, version. No API key is needed.
func (c *Client) GetMetadata(ctx context.Context) (_ *Metadata, err error) {
	defer c.observe(ctx, "GetMetadata", time.Now(), &err)

	resp, err := c.apiClient.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return &Metadata{Document: newDocument(resp)}, nil
}

// GetAuthMe introspects the configured API key.
func (c *Client) GetAuthMe(ctx context.Context) (_ *Identity, err error) {
	defer c.observe(ctx, "GetAuthMe", time.Now(), &err)

	resp, err := c.apiClient.GetAuthMe(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{Document: newDocument(resp)}, nil
}

// GetQuote requests a quote. The total price is always sent as
// x-total-price and defaults to 0.5.
func (c *Client) GetQuote(ctx context.Context, opts ...QuoteOption) (_ *Quote, err error) {
	defer c.observe(ctx, "GetQuote", time.Now(), &err)

	cfg := newQuoteConfig(opts)
	resp, err := c.apiClient.GetQuote(ctx, cfg.totalPrice.String())
	if err != nil {
		return nil, err
	}
	return &Quote{Document: newDocument(resp)}, nil
}

// VerifyQuote asks the facilitator to lock the quote. The facilitator
// re-derives the quote and checks nothing was altered, so the quote is sent
// in compact form exactly as issued.
func (c *Client) VerifyQuote(ctx context.Context, quote *Quote, nonce string) (_ *VerifyResult, err error) {
	const op = "VerifyQuote"
	defer c.observe(ctx, op, time.Now(), &err)

	if err := validateArgs(op, verifyQuoteArgs{Quote: quote, Nonce: nonce}); err != nil {
		return nil, err
	}

	paymentData, err := quote.PaymentData()
	if err != nil {
		return nil, err
	}
	return c.verify(ctx, paymentData, nonce)
}

// VerifyPaymentData is VerifyQuote for a quote the caller already holds in
// serialized form. paymentData is forwarded byte for byte.
func (c *Client) VerifyPaymentData(ctx context.Context, paymentData, nonce string) (_ *VerifyResult, err error) {
	const op = "VerifyPaymentData"
	defer c.observe(ctx, op, time.Now(), &err)

	if err := validateArgs(op, verifyPaymentDataArgs{Nonce: nonce}); err != nil {
		return nil, err
	}
	return c.verify(ctx, paymentData, nonce)
}

func (c *Client) verify(ctx context.Context, paymentData, nonce string) (*VerifyResult, error) {
	resp, err := c.apiClient.VerifyQuote(ctx, paymentData, nonce)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Document: newDocument(resp)}, nil
}

// GetPaidAccess fetches the protected resource after the payment for the
// quote identified by proof.Nonce has been submitted as proof.Tx.
func (c *Client) GetPaidAccess(ctx context.Context, proof PaymentProof) (_ *Resource, err error) {
	const op = "GetPaidAccess"
	defer c.observe(ctx, op, time.Now(), &err)

	if err := validateArgs(op, proof); err != nil {
		return nil, err
	}

	header, err := proof.Header()
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.GetPaidAccess(ctx, header)
	if err != nil {
		return nil, err
	}
	return &Resource{Document: newDocument(resp)}, nil
}

// GetAndVerifyQuote gets a quote and immediately verifies it with its own
// nonce. It does not pay: the caller still submits the payment on-chain and
// then calls GetPaidAccess.
func (c *Client) GetAndVerifyQuote(ctx context.Context, opts ...QuoteOption) (_ *QuoteVerification, err error) {
	const op = "GetAndVerifyQuote"
	defer c.observe(ctx, op, time.Now(), &err)

	quote, err := c.GetQuote(ctx, opts...)
	if err != nil {
		return nil, err
	}

	nonce := quote.Nonce()
	if nonce == "" {
		return nil, apierrors.Invalid(op, `quote did not contain a "nonce" field`)
	}

	verify, err := c.VerifyQuote(ctx, quote, nonce)
	if err != nil {
		return nil, err
	}

	return &QuoteVerification{Quote: quote, Verify: verify}, nil
}

// observe records the outcome of one operation. It never sees request
// headers, so neither the API key nor payment proofs reach logs or metrics.
func (c *Client) observe(ctx context.Context, op string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	outcome := outcomeOf(*errp)

	c.metrics.IncCounter(metrics.MetricRequests, map[string]string{
		metrics.LabelOperation: op,
		metrics.LabelOutcome:   outcome,
	})
	c.metrics.ObserveLatency(metrics.MetricRequestDuration, elapsed, map[string]string{
		metrics.LabelOperation: op,
	})

	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
	}
	if *errp != nil {
		attrs = append(attrs, slog.String("error", (*errp).Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "nlx402 operation", attrs...)
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}

	var (
		reqErr *RequestError
		cfgErr *ConfigError
		valErr *ValidationError
		netErr *NetworkError
	)
	switch {
	case errors.As(err, &reqErr):
		return strconv.Itoa(reqErr.StatusCode)
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &valErr):
		return "validation_error"
	case errors.As(err, &netErr):
		return "network_error"
	}
	return "error"
}
