package nlx402

import (
	"fmt"
	"time"

	"github.com/nlx402/client-go/internal/apierrors"
)

// Quote is a server-issued, time-bound offer for accessing a protected
// resource. The client does not interpret amounts, mints or expiry; it only
// relies on the nonce and on round-tripping the content verbatim to /verify.
type Quote struct {
	Document
}

// NewQuote builds a quote from caller-held fields, e.g. one restored from
// storage. Keys are serialized in sorted order.
func NewQuote(fields map[string]any) (*Quote, error) {
	if fields == nil {
		return nil, apierrors.Invalid("NewQuote", "fields are required")
	}
	raw, err := marshalCompact(fields)
	if err != nil {
		return nil, fmt.Errorf("encode quote: %w", err)
	}
	return ParseQuote(raw)
}

// ParseQuote wraps a JSON object as a Quote, keeping its bytes so the
// original key order is preserved on verification.
func ParseQuote(data []byte) (*Quote, error) {
	doc := ParseDocument(data)
	if doc.Object() == nil {
		return nil, apierrors.Invalid("ParseQuote", "quote must be a JSON object")
	}
	return &Quote{Document: doc}, nil
}

// PaymentData returns the compact serialization sent as payment_data.
// The facilitator hashes what it receives to detect tampering, so JSON
// quotes are compacted from their original bytes: no whitespace between
// tokens, key order as issued.
func (q *Quote) PaymentData() (string, error) {
	if !q.IsJSON() && !q.IsEmpty() {
		return q.Text(), nil
	}
	data, err := q.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode payment data: %w", err)
	}
	return string(data), nil
}

// Nonce returns the single-use token binding this quote to its verification.
func (q *Quote) Nonce() string { return q.GetString("nonce") }

// Amount returns the quoted amount in base units, as issued.
func (q *Quote) Amount() string { return q.GetString("amount") }

// Chain returns the settlement chain.
func (q *Quote) Chain() string { return q.GetString("chain") }

// Network returns the settlement network.
func (q *Quote) Network() string { return q.GetString("network") }

// Mint returns the settlement asset.
func (q *Quote) Mint() string { return q.GetString("mint") }

// Recipient returns the address that must receive the payment.
func (q *Quote) Recipient() string { return q.GetString("recipient") }

// Version returns the quote format version.
func (q *Quote) Version() string { return q.GetString("version") }

// Decimals returns the number of decimals of the mint.
func (q *Quote) Decimals() (int64, bool) { return q.GetInt64("decimals") }

// ExpiresAt returns expires_at interpreted as Unix seconds.
func (q *Quote) ExpiresAt() (time.Time, bool) {
	secs, ok := q.GetInt64("expires_at")
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// Expired reports whether the quote's expires_at is at or before now.
// Quotes without an expiry never report expired. This is informational;
// the facilitator decides whether a quote is still valid.
func (q *Quote) Expired(now time.Time) bool {
	exp, ok := q.ExpiresAt()
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// VerifyResult is the facilitator's answer to a verification
// (POST /verify).
type VerifyResult struct {
	Document
}

// OK reports whether the facilitator accepted the quote.
func (v *VerifyResult) OK() bool {
	return v.GetBool("ok")
}

// QuoteVerification pairs a quote with its verification result.
type QuoteVerification struct {
	Quote  *Quote        `json:"quote"`
	Verify *VerifyResult `json:"verify"`
}

// PaymentProof identifies a submitted on-chain payment for a quote.
type PaymentProof struct {
	Tx    string `json:"tx" validate:"required"`
	Nonce string `json:"nonce" validate:"required"`
}

// Header returns the x-payment header value: {"tx":"...","nonce":"..."}.
func (p PaymentProof) Header() (string, error) {
	data, err := marshalCompact(p)
	if err != nil {
		return "", fmt.Errorf("encode payment proof: %w", err)
	}
	return string(data), nil
}
