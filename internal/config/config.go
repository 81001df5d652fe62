// Package config loads service configuration from NEXTHR_* environment
// variables. The signing secret and token TTL have no defaults: the process
// refuses to start without them.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the immutable process-wide configuration, loaded once at startup.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisAddr   string

	JWTSecret string
	TokenTTL  time.Duration

	PublicPrefixes []string
	CORSOrigins    []string

	LoginMaxAttempts int
	LoginCooldown    time.Duration
}

// Load reads the environment and validates required settings.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEXTHR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("public_prefixes", "/api/auth/login,/api/auth/signup,/api/public,/healthz")
	v.SetDefault("cors_origins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("login_max_attempts", 10)
	v.SetDefault("login_cooldown", "15m")

	cfg := &Config{
		HTTPAddr:         v.GetString("http_addr"),
		DatabaseURL:      v.GetString("database_url"),
		RedisAddr:        v.GetString("redis_addr"),
		JWTSecret:        v.GetString("jwt_secret"),
		TokenTTL:         v.GetDuration("jwt_ttl"),
		PublicPrefixes:   splitList(v.GetString("public_prefixes")),
		CORSOrigins:      splitList(v.GetString("cors_origins")),
		LoginMaxAttempts: v.GetInt("login_max_attempts"),
		LoginCooldown:    v.GetDuration("login_cooldown"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: NEXTHR_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("config: NEXTHR_JWT_TTL is required and must be a positive duration")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: NEXTHR_DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
