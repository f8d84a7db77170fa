package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQuote = `{"amount":"500000","chain":"solana","mint":"USDC","nonce":"n-1","recipient":"R","version":"1"}`

type recordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Body    string
	Payment map[string]string
}

type facilitator struct {
	mu       sync.Mutex
	requests []recordedRequest
	quote    string
}

func (f *facilitator) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *facilitator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *facilitator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: string(body)}
	if p := r.Header.Get("x-payment"); p != "" {
		_ = json.Unmarshal([]byte(p), &rec.Payment)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/metadata":
		io.WriteString(w, `{"ok":true,"metadata":{"network":"mainnet","version":"1"}}`)
	case r.Header.Get("x-api-key") != "test-key":
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"bad key"}`)
	case r.URL.Path == "/api/auth/me":
		io.WriteString(w, `{"ok":true,"wallet_id":"W1"}`)
	case r.URL.Path == "/protected" && r.Header.Get("x-payment") != "":
		io.WriteString(w, `{"ok":true,"data":"secret"}`)
	case r.URL.Path == "/protected":
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, f.quote)
	case r.URL.Path == "/verify":
		io.WriteString(w, `{"ok":true}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"not found"}`)
	}
}

func newFacilitator(t *testing.T) (*facilitator, *httptest.Server) {
	t.Helper()
	f := &facilitator{quote: testQuote}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, srv *httptest.Server, env map[string]string, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"nlx402", "-env-file", "", "-base-url", srv.URL}, args...)
	err := run(full, Config{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: envMap(env),
	})
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

var withKey = map[string]string{EnvAPIKey: "test-key"}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, os.Stdin, cfg.Stdin)
	assert.Equal(t, os.Stdout, cfg.Stdout)
	assert.Equal(t, os.Stderr, cfg.Stderr)
	assert.NotNil(t, cfg.Getenv)
	assert.Nil(t, cfg.HTTPClient)
}

func TestRun_NoCommand(t *testing.T) {
	var stderr bytes.Buffer
	err := run([]string{"nlx402", "-env-file", ""}, Config{Stdout: io.Discard, Stderr: &stderr})
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "usage: nlx402")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, srv := newFacilitator(t)
	res := runCLI(t, srv, nil, "", "pay")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown command: pay")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	_, srv := newFacilitator(t)
	res := runCLI(t, srv, nil, "", "-log-level", "loud", "metadata")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid configuration")
}

func TestRun_Metadata(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, nil, "", "metadata")
	require.NoError(t, res.err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, true, out["ok"])

	req := f.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/metadata", req.Path)
	assert.Empty(t, req.Header.Get("x-api-key"))
}

func TestRun_Me(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, "", "me")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"wallet_id": "W1"`)
	assert.Equal(t, "test-key", f.last().Header.Get("x-api-key"))
}

func TestRun_MeWithoutKey(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, nil, "", "me")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "API key")
	assert.Equal(t, 0, f.count(), "no request without a key")
}

func TestRun_APIKeyFlagWins(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, map[string]string{EnvAPIKey: "env-key"}, "", "-api-key", "test-key", "me")
	require.NoError(t, res.err)
	assert.Equal(t, "test-key", f.last().Header.Get("x-api-key"))
}

func TestRun_Quote(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPrice string
	}{
		{"default price", []string{"quote"}, "0.5"},
		{"explicit price", []string{"quote", "-price", "0.002"}, "0.002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFacilitator(t)
			res := runCLI(t, srv, withKey, "", tt.args...)
			require.Error(t, res.err, "402 is reported as a request error")
			assert.Equal(t, tt.wantPrice, f.last().Header.Get("x-total-price"))
			assert.Contains(t, res.stderr, "status=402")
		})
	}
}

func TestRun_QuoteOK(t *testing.T) {
	f := &facilitator{quote: testQuote}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Header: r.Header.Clone()})
		f.mu.Unlock()
		io.WriteString(w, testQuote)
	}))
	defer srv.Close()

	res := runCLI(t, srv, withKey, "", "quote")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"nonce": "n-1"`)
}

func TestRun_Verify(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, testQuote, "verify", "-nonce", "n-1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"ok": true`)

	req := f.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/verify", req.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "payment_data="+url.QueryEscape(testQuote)+"&nonce=n-1", req.Body)
}

func TestRun_VerifyFromFile(t *testing.T) {
	f, srv := newFacilitator(t)
	path := filepath.Join(t.TempDir(), "quote.json")
	require.NoError(t, os.WriteFile(path, []byte("{\n  \"nonce\": \"n-9\"\n}\n"), 0o600))

	res := runCLI(t, srv, withKey, "", "verify", "-quote", path)
	require.NoError(t, res.err)

	form, err := url.ParseQuery(f.last().Body)
	require.NoError(t, err)
	assert.Equal(t, `{"nonce":"n-9"}`, form.Get("payment_data"))
	assert.Equal(t, "n-9", form.Get("nonce"), "nonce defaults to the quote's own")
}

func TestRun_VerifyRaw(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, "opaque-token\n", "verify", "-raw", "-nonce", "n-2")
	require.NoError(t, res.err)
	assert.Equal(t, "payment_data=opaque-token&nonce=n-2", f.last().Body)
}

func TestRun_VerifyInvalidQuote(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, "not json", "verify", "-nonce", "n-1")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "parse quote")
	assert.Equal(t, 0, f.count())
}

func TestRun_QuoteVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/protected":
			assert.Equal(t, "1", r.Header.Get("x-total-price"))
			io.WriteString(w, testQuote)
		case "/verify":
			io.WriteString(w, `{"ok":true,"nonce":"n-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	res := runCLI(t, srv, withKey, "", "quote-verify", "-price", "1")
	require.NoError(t, res.err)

	var out struct {
		Quote  map[string]any `json:"quote"`
		Verify map[string]any `json:"verify"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "n-1", out.Quote["nonce"])
	assert.Equal(t, true, out.Verify["ok"])
}

func TestRun_Access(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, "", "access", "-tx", "sig-1", "-nonce", "n-1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"data": "secret"`)
	assert.Equal(t, map[string]string{"tx": "sig-1", "nonce": "n-1"}, f.last().Payment)
}

func TestRun_AccessMissingTx(t *testing.T) {
	f, srv := newFacilitator(t)
	res := runCLI(t, srv, withKey, "", "access", "-nonce", "n-1")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "tx")
	assert.Equal(t, 0, f.count())
}

func TestRun_UnexpectedArgument(t *testing.T) {
	_, srv := newFacilitator(t)
	res := runCLI(t, srv, nil, "", "metadata", "extra")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unexpected argument "extra"`)
}

func TestRun_RequestErrorLogged(t *testing.T) {
	_, srv := newFacilitator(t)
	res := runCLI(t, srv, map[string]string{EnvAPIKey: "wrong"}, "", "me")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "request rejected")
	assert.Contains(t, res.stderr, "bad key")
}

func TestRun_ConfigFile(t *testing.T) {
	f, srv := newFacilitator(t)
	path := writeFile(t, "nlx402.toml", "api_key = \"test-key\"\ntotal_price = \"3\"\n")

	res := runCLI(t, srv, nil, "", "-config", path, "quote")
	require.Error(t, res.err)
	assert.Equal(t, "3", f.last().Header.Get("x-total-price"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]string{"a": "<b>"}))
	assert.Equal(t, "{\n  \"a\": \"<b>\"\n}\n", buf.String())
}
