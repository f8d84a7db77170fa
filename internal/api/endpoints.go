package api

import (
	"context"
	"net/http"
)

// Facilitator endpoint paths.
const (
	PathMetadata  = "/api/metadata"
	PathAuthMe    = "/api/auth/me"
	PathProtected = "/protected"
	PathVerify    = "/verify"
)

// GetMetadata fetches the facilitator's public metadata.
func (c *Client) GetMetadata(ctx context.Context) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   PathMetadata,
	})
}

// GetAuthMe introspects the configured API key.
func (c *Client) GetAuthMe(ctx context.Context) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:        http.MethodGet,
		Path:          PathAuthMe,
		RequireAPIKey: true,
	})
}

// GetQuote requests a quote for totalPrice, sent verbatim as x-total-price.
func (c *Client) GetQuote(ctx context.Context, totalPrice string) (*Response, error) {
	header := http.Header{}
	header.Set(HeaderTotalPrice, totalPrice)

	return c.Do(ctx, &Request{
		Method:        http.MethodGet,
		Path:          PathProtected,
		RequireAPIKey: true,
		Header:        header,
	})
}

// VerifyQuote posts an already serialized quote and its nonce.
func (c *Client) VerifyQuote(ctx context.Context, paymentData, nonce string) (*Response, error) {
	header := http.Header{}
	header.Set(HeaderContentType, ContentTypeForm)

	return c.Do(ctx, &Request{
		Method:        http.MethodPost,
		Path:          PathVerify,
		RequireAPIKey: true,
		Header:        header,
		Form: Form{
			{Key: "payment_data", Value: paymentData},
			{Key: "nonce", Value: nonce},
		},
	})
}

// GetPaidAccess fetches the protected resource, presenting xPayment as proof.
func (c *Client) GetPaidAccess(ctx context.Context, xPayment string) (*Response, error) {
	header := http.Header{}
	header.Set(HeaderPayment, xPayment)

	return c.Do(ctx, &Request{
		Method:        http.MethodGet,
		Path:          PathProtected,
		RequireAPIKey: true,
		Header:        header,
	})
}
