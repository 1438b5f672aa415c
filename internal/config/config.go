package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Mail     MailConfig     `yaml:"mail" envconfig:"MAIL"`
	Export   ExportConfig   `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains the scheduler trigger credential and rate limits
type SecurityConfig struct {
	// TriggerSecret is the shared bearer token the external scheduler
	// must present on the export trigger endpoint.
	TriggerSecret string          `yaml:"trigger_secret" envconfig:"TRIGGER_SECRET"`
	RateLimit     RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console, file, both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DatabaseConfig contains the order store connection settings
type DatabaseConfig struct {
	URL             string        `yaml:"url" envconfig:"URL"`
	MaxConns        int           `yaml:"max_conns" envconfig:"MAX_CONNS"`
	MinConns        int           `yaml:"min_conns" envconfig:"MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" envconfig:"MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" envconfig:"MAX_CONN_IDLE_TIME"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
}

// MailConfig contains delivery collaborator settings
type MailConfig struct {
	Provider      string        `yaml:"provider" envconfig:"PROVIDER"` // mailgun, smtp, mock
	From          string        `yaml:"from" envconfig:"FROM"`
	FromName      string        `yaml:"from_name" envconfig:"FROM_NAME"`
	To            string        `yaml:"to" envconfig:"TO"`
	SMTPHost      string        `yaml:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort      int           `yaml:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUser      string        `yaml:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPassword  string        `yaml:"smtp_password" envconfig:"SMTP_PASSWORD"`
	MailgunDomain string        `yaml:"mailgun_domain" envconfig:"MAILGUN_DOMAIN"`
	MailgunAPIKey string        `yaml:"mailgun_api_key" envconfig:"MAILGUN_API_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ExportConfig contains report formatting and window settings
type ExportConfig struct {
	Format      string `yaml:"format" envconfig:"FORMAT"`             // csv, xlsx
	QuoteFields bool   `yaml:"quote_fields" envconfig:"QUOTE_FIELDS"` // opt-in RFC 4180 quoting
	Timezone    string `yaml:"timezone" envconfig:"TIMEZONE"`
	Subject     string `yaml:"subject" envconfig:"SUBJECT"`
	Body        string `yaml:"body" envconfig:"BODY"`
}

// Default returns the configuration baseline before file and env overrides
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   5,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/uoden.log",
		},
		Database: DatabaseConfig{
			MaxConns:        8,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
			ConnectTimeout:  10 * time.Second,
		},
		Mail: MailConfig{
			Provider: "mock",
			FromName: "受発注システム",
			Timeout:  30 * time.Second,
		},
		Export: ExportConfig{
			Format:   "csv",
			Timezone: "Asia/Tokyo",
			Subject:  "本日の発注集計",
			Body:     "本日の発注集計ファイルを添付します。",
		},
	}
}

// Load loads configuration from the optional config file and environment
// variables. Environment variables win over file values, which win over
// the built-in defaults.
func Load() (*Config, error) {
	cfg := Default()

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("UODEN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("UODEN_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Export.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("invalid export format %q (want csv or xlsx)", c.Export.Format)
	}
	switch c.Mail.Provider {
	case "mailgun", "smtp", "mock":
	default:
		return fmt.Errorf("invalid mail provider %q (want mailgun, smtp or mock)", c.Mail.Provider)
	}
	if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
		return fmt.Errorf("invalid export timezone %q: %w", c.Export.Timezone, err)
	}
	return nil
}

// Location resolves the export timezone. validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
