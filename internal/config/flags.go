package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// durationSetter parses a flag value with ParseDuration into dst.
func durationSetter(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

// parseFlags overlays command-line flags. Unset flags keep the current value.
//
//	-http-addr      HTTP listen address
//	-health-addr    gRPC health listen address
//	-dsn            PostgreSQL DSN
//	-app-url        base URL of share links
//	-limiter        postgres|redis
//	-session-ttl    session lifetime, e.g. 14d
//	-sweep-interval expired-session sweep period, 0 disables
//	-dev            development logging and gRPC reflection
func parseFlags(c *Config, args []string) error {
	fs := flag.NewFlagSet("zest-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP listen address")
	fs.StringVar(&c.HealthAddr, "health-addr", c.HealthAddr, "gRPC health listen address")
	fs.StringVar(&c.DatabaseURL, "dsn", c.DatabaseURL, "PostgreSQL DSN")
	fs.StringVar(&c.AppURL, "app-url", c.AppURL, "base URL of share links")
	fs.StringVar(&c.LimiterBackend, "limiter", c.LimiterBackend, "sign-in limiter backend: postgres|redis")
	fs.Func("session-ttl", "session lifetime, e.g. 14d", durationSetter(&c.SessionTTL))
	fs.Func("sweep-interval", "expired-session sweep period, 0 disables", durationSetter(&c.SweepInterval))
	fs.BoolVar(&c.Dev, "dev", c.Dev, "development logging and gRPC reflection")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("flags: unexpected arguments %v", fs.Args())
	}
	return nil
}
