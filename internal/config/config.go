package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. MOVERS_DATA_SOURCE_API_KEY.
const EnvPrefix = "MOVERS"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider  string `yaml:"provider" envconfig:"PROVIDER" validate:"oneof=yahoo eodhd mock"`
		BaseURL   string `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
		APIKey    string `yaml:"api_key" envconfig:"API_KEY" validate:"required_if=Provider eodhd"`
		Exchange  string `yaml:"exchange" envconfig:"EXCHANGE"`
		RateLimit int    `yaml:"rate_limit" envconfig:"RATE_LIMIT" validate:"gte=0"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Report struct {
		Symbols      string `yaml:"symbols" envconfig:"SYMBOLS"`
		LookbackDays int    `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS" validate:"gt=0"`
	} `yaml:"report" envconfig:"REPORT"`
	Server struct {
		Addr string `yaml:"addr" envconfig:"ADDR" validate:"required"`
	} `yaml:"server" envconfig:"SERVER"`
	Schedule struct {
		ReportCron string `yaml:"report_cron" envconfig:"REPORT_CRON"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID" validate:"required_with=BotToken"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Export struct {
		Dir string `yaml:"dir" envconfig:"DIR"`
	} `yaml:"export" envconfig:"EXPORT"`
	Log struct {
		Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
	} `yaml:"log" envconfig:"LOG"`
	// Proxy falls back to the unprefixed HTTPS_PROXY when neither the file nor MOVERS_HTTPS_PROXY sets it.
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then .env and environment variable overrides, then defaults.
// A missing YAML or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Exchange == "" {
		c.DataSource.Exchange = "US"
	}
	if c.DataSource.RateLimit == 0 {
		c.DataSource.RateLimit = 5
	}
	if c.Report.Symbols == "" {
		c.Report.Symbols = "AAPL, MSFT, GOOG"
	}
	if c.Report.LookbackDays == 0 {
		c.Report.LookbackDays = 365
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/movers.db"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "data/exports"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Proxy == "" {
		c.Proxy = os.Getenv("HTTPS_PROXY")
	}
	if c.Proxy == "" {
		c.Proxy = os.Getenv("https_proxy")
	}
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q constraint", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
