package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	nlx402 "github.com/nlx402/client-go"
)

// Environment variables read by the CLI.
const (
	EnvAPIKey   = "NLX402_API_KEY"
	EnvBaseURL  = "NLX402_BASE_URL"
	EnvLogLevel = "NLX402_LOG_LEVEL"
	EnvTimeout  = "NLX402_TIMEOUT"
)

const defaultTimeout = 30 * time.Second

type fileConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	LogLevel   string `toml:"log_level"`
	Timeout    string `toml:"timeout"`
	TotalPrice string `toml:"total_price"`
}

// settings is the resolved CLI configuration.
type settings struct {
	BaseURL    string `validate:"required,url"`
	APIKey     string
	LogLevel   string        `validate:"oneof=debug info warn error"`
	Timeout    time.Duration `validate:"gt=0"`
	TotalPrice string
}

func defaultSettings() settings {
	return settings{
		BaseURL:  nlx402.DefaultBaseURL,
		LogLevel: "info",
		Timeout:  defaultTimeout,
	}
}

var validate = validator.New()

// resolveSettings layers defaults, the TOML file, the .env file and the
// process environment, in that order; later sources win.
func resolveSettings(configPath, envFile string, getenv func(string) string) (settings, error) {
	s := defaultSettings()

	if configPath != "" {
		if err := applyFile(configPath, &s); err != nil {
			return settings{}, err
		}
	}

	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return settings{}, err
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := applyEnv(lookup, &s); err != nil {
		return settings{}, err
	}

	return s, nil
}

func applyFile(path string, s *settings) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("base_url") {
		s.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("api_key") {
		s.APIKey = strings.TrimSpace(raw.APIKey)
	}
	if meta.IsDefined("log_level") {
		s.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		s.Timeout = d
	}
	if meta.IsDefined("total_price") {
		s.TotalPrice = strings.TrimSpace(raw.TotalPrice)
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return values, nil
}

func applyEnv(lookup func(string) string, s *settings) error {
	if v := lookup(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := lookup(EnvAPIKey); v != "" {
		s.APIKey = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := lookup(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		s.Timeout = d
	}
	return nil
}

func (s settings) validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (s settings) slogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
