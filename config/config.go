package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	GinMode        string
	DBDriver       string
	DBDSN          string
	SessionSecret  string
	MediaRoot      string
	StaticRoot     string
	StaffUsernames []string
	LogFormat      string
	BcryptCost     int
}

var ErrNoSessionSecret = errors.New("SESSION_SECRET environment variable not set")

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "blogicum.db")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("STATIC_ROOT", "static")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BCRYPT_COST", 12)

	cfg := &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:         v.GetString("DB_DSN"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		MediaRoot:     v.GetString("MEDIA_ROOT"),
		StaticRoot:    v.GetString("STATIC_ROOT"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
	}
	cfg.StaffUsernames = parseList(v.GetString("STAFF_USERNAMES"))

	if cfg.SessionSecret == "" {
		if cfg.GinMode != "debug" {
			return nil, ErrNoSessionSecret
		}
		cfg.SessionSecret = "blogicum-development-secret"
	}
	return cfg, nil
}

func parseList(raw string) []string {
	items := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(items)
}

// IsStaffUsername reports whether username is listed in STAFF_USERNAMES.
func (c *Config) IsStaffUsername(username string) bool {
	return lo.Contains(c.StaffUsernames, username)
}
