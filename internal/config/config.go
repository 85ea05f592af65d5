package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	SiteURL     string
	LogLevel    string
	JWTSecret   string

	StripeSecretKey     string
	StripeWebhookSecret string

	SMTP         SMTPConfig
	SupportEmail string

	RedisAddr              string
	RateLimitSweepInterval time.Duration

	SweepInterval   time.Duration
	SweepLookback   time.Duration
	SweepBatchSize  int
	WorkerPoolSize  int
	ShutdownTimeout time.Duration
}

// SMTPConfig configures the outgoing mail server. An empty Host disables delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

const (
	defaultRunAddress             = ":8080"
	defaultSiteURL                = "http://localhost:8080"
	defaultLogLevel               = "info"
	defaultJWTSecret              = "change-me-in-production"
	defaultSMTPPort               = 587
	defaultSMTPFrom               = "Benice <pedidos@benice.es>"
	defaultRateLimitSweepInterval = 5 * time.Minute
	defaultSweepInterval          = 10 * time.Minute
	defaultSweepLookback          = 24 * time.Hour
	defaultSweepBatchSize         = 50
	defaultWorkerPoolSize         = 4
	defaultShutdownTimeout        = 10 * time.Second
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

// LoadEnv is Load without command-line flags, for tools that own their arguments.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()
	return load(nil, os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		SiteURL:             getString(lookup, "SITE_URL", defaultSiteURL),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		SMTP: SMTPConfig{
			Host:     getString(lookup, "SMTP_HOST", ""),
			Port:     getInt(lookup, "SMTP_PORT", defaultSMTPPort),
			Username: getString(lookup, "SMTP_USERNAME", ""),
			Password: getString(lookup, "SMTP_PASSWORD", ""),
			From:     getString(lookup, "SMTP_FROM", defaultSMTPFrom),
		},
		SupportEmail:           getString(lookup, "SUPPORT_EMAIL", ""),
		RedisAddr:              getString(lookup, "REDIS_ADDR", ""),
		RateLimitSweepInterval: getDuration(lookup, "RATE_LIMIT_SWEEP_INTERVAL", defaultRateLimitSweepInterval),
		SweepInterval:          getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepLookback:          getDuration(lookup, "SWEEP_LOOKBACK", defaultSweepLookback),
		SweepBatchSize:         getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sweepIntervalStr   = cfg.SweepInterval.String()
		sweepLookbackStr   = cfg.SweepLookback.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.SiteURL, "site-url", cfg.SiteURL, "Public storefront URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for shared rate limiting")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum sessions per sweep")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between reconciliation sweeps")
	fs.StringVar(&sweepLookbackStr, "sweep-lookback", sweepLookbackStr, "How far back a sweep looks for completed sessions")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.SweepLookback, err = time.ParseDuration(sweepLookbackStr); err != nil {
		return nil, fmt.Errorf("invalid sweep lookback: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.SweepLookback <= 0 {
		cfg.SweepLookback = defaultSweepLookback
	}

	if cfg.RateLimitSweepInterval <= 0 {
		cfg.RateLimitSweepInterval = defaultRateLimitSweepInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if u, err := url.Parse(cfg.SiteURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid site url %q", cfg.SiteURL)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key must be provided")
	}

	return cfg, nil
}

// SiteHost returns the host part of SiteURL, used for origin checks.
func (c *Config) SiteHost() string {
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
