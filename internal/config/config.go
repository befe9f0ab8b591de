package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RateLimitOff disables rate limiting on the dispatched routes.
const RateLimitOff = "off"

// Config holds application configuration
type Config struct {
	ServerPort         string `validate:"required,numeric"`
	AdminPort          string `validate:"required,numeric,nefield=ServerPort"`
	BrowserURL         string `validate:"required,url"`
	AllowedOriginsFile string `validate:"omitempty,filepath"`
	RateLimit          string `validate:"required"`
	RedisURL           string `validate:"omitempty,url"`
	MaxRequestBytes    int64  `validate:"gt=0"`
	EnableHSTS         bool
	TrustProxyHeaders  bool
	ServerDebugMode    bool
	OTELEnabled        bool
	OTELEndpoint       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom loads configuration through getenv, which lets callers and tests supply
// the environment without touching the process.
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := lookup(getenv)
	cfg := &Config{
		ServerPort:         env.str("SERVER_PORT", "8080"),
		AdminPort:          env.str("ADMIN_PORT", "9090"),
		BrowserURL:         env.str("BROWSER_URL", ""),
		AllowedOriginsFile: env.str("ALLOWED_ORIGINS_FILE", ""),
		RateLimit:          env.str("RATE_LIMIT", "100-S"),
		RedisURL:           env.str("REDIS_URL", ""),
		MaxRequestBytes:    env.int64("MAX_REQUEST_BYTES", 4<<20),
		EnableHSTS:         env.bool("ENABLE_HSTS", false),
		TrustProxyHeaders:  env.bool("TRUST_PROXY_HEADERS", false),
		ServerDebugMode:    env.bool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        env.bool("OTEL_ENABLED", false),
		OTELEndpoint:       env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid configuration: %s failed %q", envName(verrs[0].Field()), verrs[0].Tag())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// RateLimitEnabled reports whether the dispatched routes should be rate limited.
func (c *Config) RateLimitEnabled() bool {
	return !strings.EqualFold(c.RateLimit, RateLimitOff)
}

var envNames = map[string]string{
	"ServerPort":         "SERVER_PORT",
	"AdminPort":          "ADMIN_PORT",
	"BrowserURL":         "BROWSER_URL",
	"AllowedOriginsFile": "ALLOWED_ORIGINS_FILE",
	"RateLimit":          "RATE_LIMIT",
	"RedisURL":           "REDIS_URL",
	"MaxRequestBytes":    "MAX_REQUEST_BYTES",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

type lookup func(string) string

func (l lookup) str(key, defaultValue string) string {
	if value := strings.TrimSpace(l(key)); value != "" {
		return value
	}
	return defaultValue
}

func (l lookup) bool(key string, defaultValue bool) bool {
	if value := l(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (l lookup) int64(key string, defaultValue int64) int64 {
	if value := l(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
