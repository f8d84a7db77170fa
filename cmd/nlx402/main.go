package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	nlx402 "github.com/nlx402/client-go"
)

const usage = `usage: nlx402 [flags] <command> [command flags]

commands:
  metadata                         facilitator metadata (no API key needed)
  me                               identity behind the API key
  quote [-price P]                 request a payment quote
  verify -nonce N [-quote FILE]    verify a quote read from FILE or stdin
  quote-verify [-price P]          request a quote and verify it
  access -tx SIG -nonce N          fetch the protected resource with a payment proof

flags:`

// Config holds the I/O and environment used by run.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// HTTPClient replaces the default transport when set.
	HTTPClient nlx402.Doer
}

// DefaultConfig returns a Config wired to the process.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

func run(args []string, cfg Config) error {
	if cfg.Getenv == nil {
		cfg.Getenv = func(string) string { return "" }
	}

	fs := flag.NewFlagSet("nlx402", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fs.PrintDefaults()
	}

	var (
		configPath = fs.String("config", "", "path to a TOML config file")
		envFile    = fs.String("env-file", ".env", "dotenv file to load if present")
		baseURL    = fs.String("base-url", "", "facilitator base URL (default "+nlx402.DefaultBaseURL+")")
		apiKey     = fs.String("api-key", "", "API key (default $"+EnvAPIKey+")")
		logLevel   = fs.String("log-level", "", "debug, info, warn or error")
		timeout    = fs.Duration("timeout", 0, "HTTP timeout (default 30s)")
	)

	if len(args) > 0 {
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no command given")
	}

	s, err := resolveSettings(*configPath, *envFile, cfg.Getenv)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			s.BaseURL = *baseURL
		case "api-key":
			s.APIKey = *apiKey
		case "log-level":
			s.LogLevel = strings.ToLower(*logLevel)
		case "timeout":
			s.Timeout = *timeout
		}
	})
	if err := s.validate(); err != nil {
		return err
	}

	logger := slog.New(tint.NewHandler(cfg.Stderr, &tint.Options{
		Level:      s.slogLevel(),
		TimeFormat: time.Kitchen,
		NoColor:    cfg.Stderr != os.Stderr,
	}))

	opts := []nlx402.Option{
		nlx402.WithBaseURL(s.BaseURL),
		nlx402.WithAPIKey(s.APIKey),
		nlx402.WithTimeout(s.Timeout),
		nlx402.WithLogger(logger),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, nlx402.WithHTTPClient(cfg.HTTPClient))
	}
	client, err := nlx402.New(opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	logger.Debug("running command", "command", cmd, "base_url", client.BaseURL())

	result, err := dispatch(ctx, client, cmd, cmdArgs, s, cfg)
	if err != nil {
		logFailure(logger, cmd, err)
		return err
	}
	return writeJSON(cfg.Stdout, result)
}

func dispatch(ctx context.Context, client *nlx402.Client, cmd string, args []string, s settings, cfg Config) (any, error) {
	switch cmd {
	case "metadata":
		if err := parseCommandFlags(cmd, args, cfg); err != nil {
			return nil, err
		}
		return client.GetMetadata(ctx)

	case "me":
		if err := parseCommandFlags(cmd, args, cfg); err != nil {
			return nil, err
		}
		return client.GetAuthMe(ctx)

	case "quote":
		var price string
		if err := parseCommandFlags(cmd, args, cfg, func(fs *flag.FlagSet) {
			fs.StringVar(&price, "price", s.TotalPrice, "x-total-price value (default "+nlx402.DefaultTotalPrice+")")
		}); err != nil {
			return nil, err
		}
		return client.GetQuote(ctx, quoteOptions(price)...)

	case "verify":
		var nonce, quotePath string
		var raw bool
		if err := parseCommandFlags(cmd, args, cfg, func(fs *flag.FlagSet) {
			fs.StringVar(&nonce, "nonce", "", "quote nonce")
			fs.StringVar(&quotePath, "quote", "-", "file holding the quote JSON, - for stdin")
			fs.BoolVar(&raw, "raw", false, "send the input as payment_data without parsing it")
		}); err != nil {
			return nil, err
		}
		return verify(ctx, client, cfg, quotePath, nonce, raw)

	case "quote-verify":
		var price string
		if err := parseCommandFlags(cmd, args, cfg, func(fs *flag.FlagSet) {
			fs.StringVar(&price, "price", s.TotalPrice, "x-total-price value (default "+nlx402.DefaultTotalPrice+")")
		}); err != nil {
			return nil, err
		}
		return client.GetAndVerifyQuote(ctx, quoteOptions(price)...)

	case "access":
		var proof nlx402.PaymentProof
		if err := parseCommandFlags(cmd, args, cfg, func(fs *flag.FlagSet) {
			fs.StringVar(&proof.Tx, "tx", "", "payment transaction signature")
			fs.StringVar(&proof.Nonce, "nonce", "", "quote nonce")
		}); err != nil {
			return nil, err
		}
		return client.GetPaidAccess(ctx, proof)
	}

	return nil, fmt.Errorf("unknown command: %s", cmd)
}

func parseCommandFlags(cmd string, args []string, cfg Config, define ...func(*flag.FlagSet)) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	for _, d := range define {
		d(fs)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%s: unexpected argument %q", cmd, fs.Arg(0))
	}
	return nil
}

func quoteOptions(price string) []nlx402.QuoteOption {
	if price == "" {
		return nil
	}
	return []nlx402.QuoteOption{nlx402.WithTotalPriceString(price)}
}

func verify(ctx context.Context, client *nlx402.Client, cfg Config, quotePath, nonce string, raw bool) (*nlx402.VerifyResult, error) {
	data, err := readInput(cfg, quotePath)
	if err != nil {
		return nil, err
	}

	if raw {
		return client.VerifyPaymentData(ctx, strings.TrimSpace(string(data)), nonce)
	}

	quote, err := nlx402.ParseQuote(data)
	if err != nil {
		return nil, fmt.Errorf("parse quote: %w", err)
	}
	if nonce == "" {
		nonce = quote.Nonce()
	}
	return client.VerifyQuote(ctx, quote, nonce)
}

func readInput(cfg Config, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cfg.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quote: %w", err)
	}
	return data, nil
}

func logFailure(logger *slog.Logger, cmd string, err error) {
	var reqErr *nlx402.RequestError
	if errors.As(err, &reqErr) {
		logger.Error("request rejected",
			"command", cmd,
			"status", reqErr.StatusCode,
			"body", string(reqErr.Raw),
		)
		return
	}
	logger.Error("command failed", "command", cmd, tint.Err(err))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
