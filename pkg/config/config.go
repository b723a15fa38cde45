package config

import (
	"fmt"
	"os"
	"time"

	"StonkPulse/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MarketSpec is one priced line of the market summary panel.
type MarketSpec struct {
	Key    string `yaml:"key" json:"key" validate:"required"`
	Label  string `yaml:"label" json:"label" validate:"required"`
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
}

// StaticSpec is a fixed-text line of the market summary panel.
type StaticSpec struct {
	Key   string `yaml:"key" json:"key" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
	Text  string `yaml:"text" json:"text"`
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"45s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s" validate:"gt=0"`
		PushInterval    time.Duration `yaml:"push_interval" default:"2s" validate:"gt=0"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		SubmitBurst     float64       `yaml:"submit_burst" default:"5" validate:"gt=0"`
		SubmitPerSec    float64       `yaml:"submit_per_sec" default:"1" validate:"gt=0"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Path string `yaml:"path" default:"/metrics" validate:"startswith=/"`
	} `yaml:"metrics"`
	Upstream struct {
		BaseURL        string        `yaml:"base_url" default:"http://127.0.0.1:8000" validate:"required,url"`
		NewsRelayURL   string        `yaml:"news_relay_url" default:"https://api.rss2json.com/v1/api.json" validate:"required,url"`
		NewsFeedURL    string        `yaml:"news_feed_url" default:"https://feeds.finance.yahoo.com/rss/2.0/headline?s=^GSPC&region=US&lang=en-US" validate:"required"`
		NewsMode       string        `yaml:"news_mode" default:"relay" validate:"oneof=relay rss"`
		Timeout        time.Duration `yaml:"timeout" default:"30s" validate:"gte=0"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps" default:"20" validate:"gte=0"`
		RateLimitBurst int           `yaml:"rate_limit_burst" default:"10" validate:"gte=0"`
		UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) StonkPulse/1.0"`
	} `yaml:"upstream"`
	Panels struct {
		TickerSymbols   []string      `yaml:"ticker_symbols" default:"[\"AAPL\",\"TSLA\",\"MSFT\",\"GOOG\",\"AMZN\",\"MSTR\",\"NVDA\",\"META\",\"NFLX\",\"BRK.B\",\"JPM\",\"AMD\",\"PYPL\"]" validate:"required,min=1,dive,required"`
		TickerInterval  time.Duration `yaml:"ticker_interval" default:"10s" validate:"gt=0"`
		TickerOnFailure string        `yaml:"ticker_on_failure" default:"unavailable" validate:"oneof=unavailable stale"`
		SummaryMarkets  []MarketSpec  `yaml:"summary_markets" default:"[{\"key\":\"sp500\",\"label\":\"S&P 500\",\"symbol\":\"^GSPC\"},{\"key\":\"nasdaq\",\"label\":\"NASDAQ\",\"symbol\":\"^IXIC\"},{\"key\":\"dow\",\"label\":\"DOW JONES\",\"symbol\":\"^DJI\"},{\"key\":\"bitcoin\",\"label\":\"Bitcoin\",\"symbol\":\"BTC-USD\"},{\"key\":\"oil\",\"label\":\"Crude Oil\",\"symbol\":\"CL=F\"}]" validate:"dive"`
		SummaryStatic   []StaticSpec  `yaml:"summary_static" default:"[{\"key\":\"eggs\",\"label\":\"Eggs\",\"text\":\"$4.50/dozen\"}]" validate:"dive"`
		SummaryInterval time.Duration `yaml:"summary_interval" default:"5m" validate:"gte=0"`
		NewsInterval    time.Duration `yaml:"news_interval" default:"60s" validate:"gt=0"`
		NewsLimit       int           `yaml:"news_limit" default:"10" validate:"gt=0"`
		RSIWindow       int           `yaml:"rsi_window" default:"14" validate:"gt=1"`
		LoadingMessages []string      `yaml:"loading_messages" default:"[\"📈 Fetching stock data...\",\"🔍 Analyzing market trends...\",\"📊 Generating insightful chart...\"]" validate:"required,min=1"`
		LoadingInterval time.Duration `yaml:"loading_interval" default:"1500ms" validate:"gt=0"`
	} `yaml:"panels"`
}

var validate = validator.New()

// Default returns a configuration populated only from `default` tags.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("TICKER_SYMBOLS"); v != "" {
		c.Panels.TickerSymbols = util.SplitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate env overrides: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
