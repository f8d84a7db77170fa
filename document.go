package nlx402

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/nlx402/client-go/internal/api"
)

// Document is a loosely typed response body. The facilitator may add fields
// at any time, so responses are kept as decoded JSON together with the
// original bytes rather than bound to a fixed schema.
//
// A body that was not valid JSON is kept as text; Value then returns a
// string and IsJSON reports false. An empty body yields a Document whose
// Value is nil.
type Document struct {
	raw    []byte
	value  any
	isJSON bool
}

// ParseDocument wraps data the same way a response body is wrapped.
func ParseDocument(data []byte) Document {
	raw := append([]byte(nil), data...)
	value, isJSON := api.DecodeBody(raw)
	return Document{raw: raw, value: value, isJSON: isJSON}
}

func newDocument(resp *api.Response) Document {
	if resp == nil {
		return Document{}
	}
	return Document{raw: resp.Raw, value: resp.Body, isJSON: resp.JSON}
}

// Value returns the decoded body: map[string]any, []any, string, bool,
// json.Number, or nil. Non-JSON bodies are returned as their text.
func (d Document) Value() any {
	return d.value
}

// Raw returns the body exactly as received.
func (d Document) Raw() []byte {
	return d.raw
}

// IsJSON reports whether the body decoded as JSON.
func (d Document) IsJSON() bool {
	return d.isJSON
}

// IsEmpty reports whether the body was empty.
func (d Document) IsEmpty() bool {
	return len(d.raw) == 0
}

// Text returns the body as a string.
func (d Document) Text() string {
	return string(d.raw)
}

// Object returns the body as a JSON object, or nil if it is not one.
func (d Document) Object() map[string]any {
	m, _ := d.value.(map[string]any)
	return m
}

// Get returns the top-level field key.
func (d Document) Get(key string) (any, bool) {
	m := d.Object()
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// Has reports whether the top-level field key is present.
func (d Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// GetString returns field key as a string. Numbers are returned in their
// JSON text form; anything else yields "".
func (d Document) GetString(key string) string {
	v, _ := d.Get(key)
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

// GetBool returns field key if it is a JSON boolean, else false.
func (d Document) GetBool(key string) bool {
	v, _ := d.Get(key)
	b, _ := v.(bool)
	return b
}

// GetInt64 returns field key as an integer. Fractional numbers are truncated.
func (d Document) GetInt64(key string) (int64, bool) {
	v, _ := d.Get(key)
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// GetFloat64 returns field key as a float.
func (d Document) GetFloat64(key string) (float64, bool) {
	v, _ := d.Get(key)
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

// GetStrings returns field key as a list of strings, skipping non-strings.
func (d Document) GetStrings(key string) []string {
	v, _ := d.Get(key)
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetDocument returns the nested value at key as its own Document.
func (d Document) GetDocument(key string) (Document, bool) {
	v, ok := d.Get(key)
	if !ok {
		return Document{}, false
	}
	raw, err := marshalCompact(v)
	if err != nil {
		return Document{}, false
	}
	return Document{raw: raw, value: v, isJSON: true}, true
}

// Decode unmarshals the body into v.
func (d Document) Decode(v any) error {
	if !d.isJSON {
		if d.IsEmpty() {
			return errors.New("decode document: empty body")
		}
		return errors.New("decode document: body is not JSON")
	}
	return json.Unmarshal(d.raw, v)
}

// MarshalJSON emits the body in compact form, preserving the original key
// order. A text body is emitted as a JSON string and an empty body as null.
func (d Document) MarshalJSON() ([]byte, error) {
	switch {
	case d.isJSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, d.raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case d.IsEmpty():
		return []byte("null"), nil
	default:
		return json.Marshal(string(d.raw))
	}
}

// UnmarshalJSON stores any JSON value as a Document.
func (d *Document) UnmarshalJSON(data []byte) error {
	value, isJSON := api.DecodeBody(data)
	if !isJSON {
		return fmt.Errorf("invalid JSON document")
	}
	d.raw = append(d.raw[:0], data...)
	d.value = value
	d.isJSON = true
	return nil
}

// marshalCompact encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Metadata is the facilitator's public capability document
// (GET /api/metadata).
type Metadata struct {
	Document
}

// OK returns the top-level ok flag.
func (m *Metadata) OK() bool {
	return m.GetBool("ok")
}

func (m *Metadata) info() Document {
	info, _ := m.GetDocument("metadata")
	return info
}

// Network returns metadata.network.
func (m *Metadata) Network() string {
	return m.info().GetString("network")
}

// Version returns metadata.version.
func (m *Metadata) Version() string {
	return m.info().GetString("version")
}

// SupportedChains returns metadata.supported_chains.
func (m *Metadata) SupportedChains() []string {
	return m.info().GetStrings("supported_chains")
}

// SupportedMints returns supported_mints, or supported_tokens on backends
// that use that name.
func (m *Metadata) SupportedMints() []string {
	if m.Has("supported_mints") {
		return m.GetStrings("supported_mints")
	}
	return m.GetStrings("supported_tokens")
}

// Identity describes the principal behind the API key (GET /api/auth/me).
type Identity struct {
	Document
}

// OK returns the ok flag.
func (i *Identity) OK() bool {
	return i.GetBool("ok")
}

// WalletID returns the wallet the key belongs to.
func (i *Identity) WalletID() string {
	return i.GetString("wallet_id")
}

// SelectedMint returns the settlement asset chosen for the key.
func (i *Identity) SelectedMint() string {
	return i.GetString("selected_mint")
}

// CreatedAt returns created_at as reported by the facilitator.
func (i *Identity) CreatedAt() (float64, bool) {
	return i.GetFloat64("created_at")
}

// Resource is the payload of a paid access call. Its content is specific to
// the protected resource.
type Resource struct {
	Document
}

// OK returns the ok flag.
func (r *Resource) OK() bool {
	return r.GetBool("ok")
}

// PaymentReceipt is the x402 object some facilitators attach to a paid
// resource response.
type PaymentReceipt struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
	Mint     string `json:"mint"`
	Nonce    string `json:"nonce"`
	Status   string `json:"status"`
	Tx       string `json:"tx"`
	Version  string `json:"version"`
}

// Receipt decodes the x402 object, if present.
func (r *Resource) Receipt() (*PaymentReceipt, error) {
	doc, ok := r.GetDocument("x402")
	if !ok {
		return nil, nil
	}
	var receipt PaymentReceipt
	if err := doc.Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decode x402 receipt: %w", err)
	}
	return &receipt, nil
}
