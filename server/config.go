package server

import (
	"time"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/config"
	"github.com/xiaoyuanzhu-com/webhook-chat/db"
)

// Config holds server configuration
type Config struct {
	// Server infrastructure (immutable, requires restart)
	Port int
	Host string
	Env  string // "development" or "production"

	// Paths (immutable, requires restart)
	DatabasePath string
	FrontendDir  string

	// Webhook defaults (changeable at runtime through the API)
	WebhookURL       string
	WebhookIgnoreSSL bool
	WebhookTimeout   time.Duration

	// Debug settings
	DBLogQueries bool
}

// FromAppConfig builds a server config from the environment config
func FromAppConfig(c *config.Config) *Config {
	return &Config{
		Port:             c.Port,
		Host:             c.Host,
		Env:              c.Env,
		DatabasePath:     c.DatabasePath,
		FrontendDir:      "frontend/dist",
		WebhookURL:       c.WebhookURL,
		WebhookIgnoreSSL: c.WebhookIgnoreSSL,
		WebhookTimeout:   c.WebhookTimeout,
		DBLogQueries:     c.DBLogQueries,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ToDBConfig converts server config to database config
func (c *Config) ToDBConfig() db.Config {
	return db.Config{
		Path:            c.DatabasePath,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 0, // Never expire
		LogQueries:      c.DBLogQueries,
	}
}

// ToWebhookSettings converts server config to the initial webhook settings
func (c *Config) ToWebhookSettings() chat.WebhookSettings {
	return chat.WebhookSettings{
		URL:             c.WebhookURL,
		IgnoreSSLErrors: c.WebhookIgnoreSSL,
		Timeout:         c.WebhookTimeout,
	}
}
