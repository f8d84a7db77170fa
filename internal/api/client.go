package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nlx402/client-go/internal/apierrors"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://pay.thrt.ai"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "nlx402-go"
)

// Header names used by the protocol.
const (
	HeaderAPIKey      = "x-api-key"
	HeaderTotalPrice  = "x-total-price"
	HeaderPayment     = "x-payment"
	HeaderContentType = "content-type"
	HeaderUserAgent   = "user-agent"

	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Doer performs a single HTTP request. *http.Client satisfies it, and any
// implementation must be safe for concurrent use if the Client is shared.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings for NewClient.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient Doer
	// Timeout applies only when HTTPClient is nil.
	Timeout   time.Duration
	UserAgent string
}

// Client is the request executor. It applies the same header, auth and
// error-mapping policy to every call.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient Doer

	mu     sync.RWMutex
	apiKey string
}

// NewClient creates a new executor from cfg.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, &apierrors.ConfigError{Setting: "base_url", Err: apierrors.ErrInvalidConfig}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
	}, nil
}

// BaseURL returns the facilitator base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIKey returns the currently configured API key.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// SetAPIKey replaces the API key used by subsequent calls.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// FormField is a single key/value pair of a form-encoded body.
type FormField struct {
	Key   string
	Value string
}

// Form is an ordered form body. Fields are encoded in declaration order.
type Form []FormField

// Encode returns the application/x-www-form-urlencoded representation.
func (f Form) Encode() string {
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.Value))
	}
	return b.String()
}

// Request describes one outbound call.
type Request struct {
	Method        string
	Path          string
	RequireAPIKey bool
	Header        http.Header
	Form          Form
}

// Response is a successful (2xx) response.
//
// Body is the decoded JSON value, the raw text when decoding failed, or nil
// when the body was empty. JSON reports which of the first two applies.
type Response struct {
	StatusCode int
	Header     http.Header
	Raw        []byte
	Body       any
	JSON       bool
}

// Do executes req. It fails without touching the network when the request
// is malformed or requires an API key that is not set.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	header := make(http.Header, len(req.Header)+2)
	for k, v := range req.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	if req.RequireAPIKey {
		key := c.APIKey()
		if key == "" {
			return nil, &apierrors.ConfigError{Setting: "api_key", Err: apierrors.ErrMissingAPIKey}
		}
		if header.Get(HeaderAPIKey) == "" {
			header.Set(HeaderAPIKey, key)
		}
	}
	if header.Get(HeaderUserAgent) == "" {
		header.Set(HeaderUserAgent, c.userAgent)
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
		if header.Get(HeaderContentType) == "" {
			header.Set(HeaderContentType, ContentTypeForm)
		}
	}

	fullURL := c.baseURL + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = header

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &apierrors.NetworkError{Method: req.Method, URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.NetworkError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("read response body: %w", err)}
	}

	decoded, isJSON := DecodeBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierrors.RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("NLx402 request failed with status %d", resp.StatusCode),
			Body:       decoded,
			Raw:        raw,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Raw:        raw,
		Body:       decoded,
		JSON:       isJSON,
	}, nil
}

func checkRequest(req *Request) error {
	if req == nil {
		return apierrors.Invalid("request", "request is nil")
	}
	if !strings.HasPrefix(req.Path, "/") {
		return apierrors.Invalid("request", fmt.Sprintf("path %q must begin with /", req.Path))
	}
	switch req.Method {
	case http.MethodGet, http.MethodPost:
	default:
		return apierrors.Invalid("request", fmt.Sprintf("unsupported method %q", req.Method))
	}
	return nil
}

// DecodeBody decodes raw as JSON. Numbers are kept as json.Number so amounts
// survive without float rounding. An empty body yields (nil, false); a body
// that is not valid JSON yields its text and false.
func DecodeBody(raw []byte) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw), false
	}
	// Trailing data after the first value means this was not a single JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return string(raw), false
	}
	return v, true
}
