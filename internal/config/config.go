// Package config loads server settings from defaults, an optional .env file,
// the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/and161185/zest/internal/genai"
)

// Limiter backends.
const (
	LimiterPostgres = "postgres"
	LimiterRedis    = "redis"
)

// Config holds runtime settings for the Zest server.
type Config struct {
	HTTPAddr       string
	HealthAddr     string
	HealthInterval time.Duration
	DatabaseURL    string
	AppURL         string // base of share links
	AppEnv         string
	Dev            bool // development logging and gRPC reflection

	SessionTTL    time.Duration
	SweepInterval time.Duration // 0 disables the sweeper

	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	AITimeout      time.Duration

	LimiterBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LoginWindow    time.Duration
	LoginMaxFails  int
	LoginBlockFor  time.Duration
}

// Defaults returns a Config with development defaults. DatabaseURL has none.
func Defaults() *Config {
	return &Config{
		HTTPAddr:       ":8080",
		HealthAddr:     ":8081",
		HealthInterval: 10 * time.Second,
		AppURL:         "http://localhost:3000",
		AppEnv:         "development",
		SessionTTL:     14 * 24 * time.Hour,
		SweepInterval:  time.Hour,
		GeminiModel:    genai.DefaultModel,
		GeminiEndpoint: genai.DefaultEndpoint,
		AITimeout:      60 * time.Second,
		LimiterBackend: LimiterPostgres,
		RedisAddr:      "localhost:6379",
		LoginWindow:    15 * time.Minute,
		LoginMaxFails:  5,
		LoginBlockFor:  15 * time.Minute,
	}
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool { return c.AppEnv == "production" }

// Load builds the final configuration. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := Defaults()
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the final configuration.
func (c *Config) Validate() error {
	var problems []error
	if c.DatabaseURL == "" {
		problems = append(problems, errors.New("DATABASE_URL is required"))
	}
	if u, err := url.Parse(c.AppURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		problems = append(problems, fmt.Errorf("APP_URL %q must be an absolute http(s) URL", c.AppURL))
	}
	switch c.LimiterBackend {
	case LimiterPostgres:
	case LimiterRedis:
		if c.RedisAddr == "" {
			problems = append(problems, errors.New("REDIS_ADDR is required for the redis limiter"))
		}
	default:
		problems = append(problems, fmt.Errorf("LIMITER_BACKEND %q is not one of postgres, redis", c.LimiterBackend))
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, errors.New("SESSION_TTL must be positive"))
	}
	if c.SweepInterval < 0 {
		problems = append(problems, errors.New("SESSION_SWEEP_INTERVAL must not be negative"))
	}
	if c.AITimeout <= 0 {
		problems = append(problems, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.LoginMaxFails < 1 || c.LoginWindow <= 0 || c.LoginBlockFor <= 0 {
		problems = append(problems, errors.New("LOGIN_WINDOW, LOGIN_MAX_FAILS and LOGIN_BLOCK_FOR must be positive"))
	}
	return errors.Join(problems...)
}
