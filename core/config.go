package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	MailerProviderSendGrid = "sendgrid"
	MailerProviderConsole  = "console"
)

type HTTPConfig struct {
	Addr string `koanf:"addr" mapstructure:"addr"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

type WebhookConfig struct {
	APIKey string `koanf:"api_key" mapstructure:"api_key"`
}

// DrafterConfig gates the primary generation path. When Enabled is false the
// pipeline goes straight to the deterministic template.
type DrafterConfig struct {
	Enabled bool          `koanf:"enabled" mapstructure:"enabled"`
	BaseURL string        `koanf:"base_url" mapstructure:"base_url"`
	APIKey  string        `koanf:"api_key" mapstructure:"api_key"`
	Model   string        `koanf:"model" mapstructure:"model"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

type MailerConfig struct {
	Provider       string `koanf:"provider" mapstructure:"provider"`
	SendGridAPIKey string `koanf:"sendgrid_api_key" mapstructure:"sendgrid_api_key"`
	DefaultFrom    string `koanf:"default_from" mapstructure:"default_from"`
}

type JobsConfig struct {
	FallbackDigestEnabled  bool   `koanf:"fallback_digest_enabled" mapstructure:"fallback_digest_enabled"`
	FallbackDigestSchedule string `koanf:"fallback_digest_schedule" mapstructure:"fallback_digest_schedule"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	HTTP        HTTPConfig     `koanf:"http" mapstructure:"http"`
	Database    DatabaseConfig `koanf:"database" mapstructure:"database"`
	Webhook     WebhookConfig  `koanf:"webhook" mapstructure:"webhook"`
	Drafter     DrafterConfig  `koanf:"drafter" mapstructure:"drafter"`
	Mailer      MailerConfig   `koanf:"mailer" mapstructure:"mailer"`
	Jobs        JobsConfig     `koanf:"jobs" mapstructure:"jobs"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "leads",
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "file:leads.db?_foreign_keys=on",
		},
		Drafter: DrafterConfig{
			Model:   "gpt-4o-mini",
			Timeout: 10 * time.Second,
		},
		Mailer: MailerConfig{
			Provider:    MailerProviderConsole,
			DefaultFrom: "noreply@knockknock.example.com",
		},
		Jobs: JobsConfig{
			FallbackDigestSchedule: "0 * * * *",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	switch strings.TrimSpace(c.Database.Driver) {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("core: database driver %q is not supported", c.Database.Driver)
	}
	switch strings.TrimSpace(c.Mailer.Provider) {
	case MailerProviderConsole:
	case MailerProviderSendGrid:
		if strings.TrimSpace(c.Mailer.SendGridAPIKey) == "" {
			return fmt.Errorf("core: mailer sendgrid_api_key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("core: mailer provider %q is not supported", c.Mailer.Provider)
	}
	if c.Drafter.Enabled && strings.TrimSpace(c.Drafter.APIKey) == "" {
		return fmt.Errorf("core: drafter api_key is required when the primary drafter is enabled")
	}
	return nil
}
