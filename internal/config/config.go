package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"ict-signal-engine/internal/domain"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string
	HTTPPort         int

	LogLevel  string
	LogPretty bool

	TwelveDataAPIKey   string
	TwelveDataBaseURL  string
	ProviderReqPerMin  int
	ProviderMaxRetries int

	IngestPollSecs int
	SignalPollSecs int
	BarLookback    int
	Timeframe      string

	InstrumentsFile string
	Instruments     []domain.Instrument

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TwelveDataAPIKey: os.Getenv("TWELVEDATA_API_KEY"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TwelveDataAPIKey == "" {
		log.Warn().Msg("TWELVEDATA_API_KEY not set, bar ingestion will fail")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogPretty = strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_PRETTY")), "true")

	cfg.TwelveDataBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("TWELVEDATA_BASE_URL")), "/")
	if cfg.TwelveDataBaseURL == "" {
		cfg.TwelveDataBaseURL = "https://api.twelvedata.com"
	}

	cfg.ProviderReqPerMin = 8
	if v := strings.TrimSpace(os.Getenv("PROVIDER_REQUESTS_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderReqPerMin = n
		}
	}

	cfg.ProviderMaxRetries = 3
	if v := strings.TrimSpace(os.Getenv("PROVIDER_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ProviderMaxRetries = n
		}
	}

	cfg.IngestPollSecs = 300
	if v := strings.TrimSpace(os.Getenv("INGEST_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IngestPollSecs = n
		}
	}

	cfg.SignalPollSecs = 300
	if v := strings.TrimSpace(os.Getenv("SIGNAL_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalPollSecs = n
		}
	}

	cfg.BarLookback = 500
	if v := strings.TrimSpace(os.Getenv("BAR_LOOKBACK")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 5000 {
			cfg.BarLookback = n
		}
	}

	cfg.Timeframe = strings.TrimSpace(os.Getenv("TIMEFRAME"))
	if cfg.Timeframe == "" {
		cfg.Timeframe = domain.DefaultTimeframe
	}

	cfg.InstrumentsFile = strings.TrimSpace(os.Getenv("INSTRUMENTS_FILE"))
	cfg.Instruments = domain.DefaultInstruments
	if cfg.InstrumentsFile != "" {
		instruments, err := LoadInstruments(cfg.InstrumentsFile)
		if err != nil {
			log.Warn().Err(err).Str("file", cfg.InstrumentsFile).Msg("falling back to built-in instruments")
		} else {
			cfg.Instruments = instruments
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Warn().Str("transport", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	return cfg
}

type instrumentsFile struct {
	Instruments []domain.Instrument `yaml:"instruments"`
}

// LoadInstruments reads an instrument catalog of the form
//
//	instruments:
//	  - asset: EURUSD
//	    name: Euro / US Dollar
//	    provider_symbol: EUR/USD
func LoadInstruments(path string) ([]domain.Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruments file: %w", err)
	}
	var f instrumentsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse instruments file: %w", err)
	}
	if len(f.Instruments) == 0 {
		return nil, fmt.Errorf("instruments file %s lists no instruments", path)
	}
	return f.Instruments, nil
}
