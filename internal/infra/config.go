package infra

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all client configuration parsed from environment variables.
type Config struct {
	// Backend functions
	RobloxAuthURL   string        `env:"PORTAL_AUTH_URL" envDefault:"http://localhost:3200/auth/roblox"`
	TelegramAuthURL string        `env:"PORTAL_TELEGRAM_AUTH_URL" envDefault:"http://localhost:3200/auth/telegram"`
	TournamentsURL  string        `env:"PORTAL_TOURNAMENTS_URL" envDefault:"http://localhost:3200/tournaments"`
	VipServersURL   string        `env:"PORTAL_VIP_SERVERS_URL" envDefault:"http://localhost:3200/vip-servers"`
	ReportsURL      string        `env:"PORTAL_REPORTS_URL" envDefault:"http://localhost:3200/reports"`
	HTTPTimeout     time.Duration `env:"PORTAL_HTTP_TIMEOUT" envDefault:"0s"`

	// Local storage
	Storage     string `env:"PORTAL_STORAGE" envDefault:"sqlite"`
	SQLiteDSN   string `env:"PORTAL_SQLITE_DSN" envDefault:"file:portal.db?cache=shared&mode=rwc"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6380"`
	RedisPrefix string `env:"PORTAL_REDIS_PREFIX" envDefault:"portal:"`

	// Collection cache race policy: last_writer_wins | discard_stale
	CachePolicy string `env:"PORTAL_CACHE_POLICY" envDefault:"last_writer_wins"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	EventsTopic  string `env:"PORTAL_EVENTS_TOPIC" envDefault:"portal.client.events"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Dev backend
	DevServerPort    int    `env:"DEVSERVER_PORT" envDefault:"3200"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects combinations the client cannot start with.
func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("PORTAL_STORAGE must be memory, sqlite or redis, got %q", c.Storage)
	}
	switch c.CachePolicy {
	case "last_writer_wins", "discard_stale":
	default:
		return fmt.Errorf("PORTAL_CACHE_POLICY must be last_writer_wins or discard_stale, got %q", c.CachePolicy)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("PORTAL_HTTP_TIMEOUT must not be negative")
	}
	for name, u := range map[string]string{
		"PORTAL_AUTH_URL":        c.RobloxAuthURL,
		"PORTAL_TOURNAMENTS_URL": c.TournamentsURL,
		"PORTAL_VIP_SERVERS_URL": c.VipServersURL,
		"PORTAL_REPORTS_URL":     c.ReportsURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, u)
		}
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
