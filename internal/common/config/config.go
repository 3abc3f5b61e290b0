// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Services      ServicesConfig     `mapstructure:"services"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Catalog       CatalogConfig      `mapstructure:"catalog"`
	OTP           OTPConfig          `mapstructure:"otp"`
	Sessions      SessionConfig      `mapstructure:"sessions"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"` // milliseconds
}

// ServicesConfig holds the upstream REST services this platform consumes.
type ServicesConfig struct {
	Catalog  UpstreamConfig `mapstructure:"catalog"`
	Contacts UpstreamConfig `mapstructure:"contacts"`
	Student  UpstreamConfig `mapstructure:"student"`
	Gupshup  GupshupConfig  `mapstructure:"gupshup"`
	Exchange UpstreamConfig `mapstructure:"exchange"`
}

type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// GupshupConfig holds settings for the WhatsApp OTP provider.
type GupshupConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	DefaultCountryCode string `mapstructure:"default_country_code"`
	Timeout            int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig holds paging defaults for the loan-product browsing session.
type CatalogConfig struct {
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
	DefaultSortKey  string `mapstructure:"default_sort_key"`
	DefaultSortDir  string `mapstructure:"default_sort_dir"`
}

// OTPConfig holds settings for phone verification.
type OTPConfig struct {
	CodeTTL        int  `mapstructure:"code_ttl"`        // seconds
	ResendCooldown int  `mapstructure:"resend_cooldown"` // seconds
	FailOpen       bool `mapstructure:"fail_open"`
	SMSFallback    bool `mapstructure:"sms_fallback"`
}

// SessionConfig controls the in-process browse-session registry.
type SessionConfig struct {
	TTL           int `mapstructure:"ttl"`            // seconds
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

// NotificationConfig holds settings for application-status notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
