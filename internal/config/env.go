package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv copies .env from the working directory into the process
// environment. Variables that are already set win; a missing file is fine.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	return nil
}

// ParseDuration extends time.ParseDuration with a whole-day "d" suffix ("14d").
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

type envReader struct {
	errs []error
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (r *envReader) int(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

func applyEnv(c *Config) error {
	var r envReader
	r.str("HTTP_ADDR", &c.HTTPAddr)
	r.str("HEALTH_ADDR", &c.HealthAddr)
	r.duration("HEALTH_INTERVAL", &c.HealthInterval)
	r.str("DATABASE_URL", &c.DatabaseURL)
	r.str("APP_URL", &c.AppURL)
	r.str("APP_ENV", &c.AppEnv)
	r.duration("SESSION_TTL", &c.SessionTTL)
	r.duration("SESSION_SWEEP_INTERVAL", &c.SweepInterval)
	r.str("GEMINI_API_KEY", &c.GeminiAPIKey)
	r.str("GEMINI_MODEL", &c.GeminiModel)
	r.str("GEMINI_ENDPOINT", &c.GeminiEndpoint)
	r.duration("AI_TIMEOUT", &c.AITimeout)
	r.str("LIMITER_BACKEND", &c.LimiterBackend)
	r.str("REDIS_ADDR", &c.RedisAddr)
	r.str("REDIS_PASSWORD", &c.RedisPassword)
	r.int("REDIS_DB", &c.RedisDB)
	r.duration("LOGIN_WINDOW", &c.LoginWindow)
	r.int("LOGIN_MAX_FAILS", &c.LoginMaxFails)
	r.duration("LOGIN_BLOCK_FOR", &c.LoginBlockFor)
	return errors.Join(r.errs...)
}
