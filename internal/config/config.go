package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type Config struct {
	AdminAddr string

	Discord struct {
		Token   string
		GuildID string
	}

	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
		TokenFile    string
		CalendarID   string
	}

	DB struct {
		DSN string
	}

	DevMode           bool
	PrometheusEnabled bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AdminAddr = getenvDefault("APP_ADMIN_ADDR", ":8080")

	cfg.Discord.Token = os.Getenv("APP_DISCORD_TOKEN")
	cfg.Discord.GuildID = os.Getenv("APP_DISCORD_GUILD_ID")

	cfg.Google.ClientID = os.Getenv("APP_GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = os.Getenv("APP_GOOGLE_CLIENT_SECRET")
	cfg.Google.RedirectURL = getenvDefault("APP_GOOGLE_REDIRECT_URL", "urn:ietf:wg:oauth:2.0:oob")
	cfg.Google.TokenFile = getenvDefault("APP_GOOGLE_TOKEN_FILE", "token.json")
	cfg.Google.CalendarID = os.Getenv("APP_GOOGLE_CALENDAR_ID")

	cfg.DB.DSN = os.Getenv("APP_DB_DSN")

	if cfg.DB.DSN == "" {
		host := os.Getenv("APP_DB_HOST")
		name := os.Getenv("APP_DB_NAME")
		user := os.Getenv("APP_DB_USER")
		password := os.Getenv("APP_DB_PASSWORD")
		port := getenvDefault("APP_DB_PORT", "5432")
		sslmode := getenvDefault("APP_DB_SSLMODE", "disable")

		if host != "" && name != "" && user != "" && password != "" {
			cfg.DB.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
		}
	}

	cfg.DevMode = getenvBool("APP_DEV_MODE", false)
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", true)

	if cfg.Discord.Token == "" {
		return nil, errors.New("APP_DISCORD_TOKEN is required")
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return nil, errors.New("google oauth configuration is required: APP_GOOGLE_CLIENT_ID and APP_GOOGLE_CLIENT_SECRET")
	}
	if cfg.Google.CalendarID == "" {
		return nil, errors.New("APP_GOOGLE_CALENDAR_ID is required")
	}
	if cfg.DB.DSN == "" && !cfg.DevMode {
		return nil, errors.New("APP_DB_DSN is required (or set APP_DB_HOST, APP_DB_NAME, APP_DB_USER, and APP_DB_PASSWORD; or APP_DEV_MODE=true for the in-memory store)")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}
