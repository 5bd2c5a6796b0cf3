// Package config loads storefront settings: defaults, then an optional YAML file, then .env,
// then the process environment.
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
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort           string
	BackendAPIURL      string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	WorkspaceIdleTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel      string
	EnableTracing bool

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	CookieSecure bool
}

type configFile struct {
	Server struct {
		HTTPPort           string `yaml:"http_port"`
		RequestTimeout     string `yaml:"request_timeout"`
		ShutdownTimeout    string `yaml:"shutdown_timeout"`
		MaxRequestBodySize int64  `yaml:"max_request_body_size"`
		CookieSecure       *bool  `yaml:"cookie_secure"`
	} `yaml:"server"`
	Backend struct {
		APIURL             string `yaml:"api_url"`
		BreakerMaxFailures uint32 `yaml:"breaker_max_failures"`
		BreakerOpenTimeout string `yaml:"breaker_open_timeout"`
	} `yaml:"backend"`
	Session struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		TTL           string `yaml:"ttl"`
		IdleTTL       string `yaml:"workspace_idle_ttl"`
	} `yaml:"session"`
	Events struct {
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic"`
	} `yaml:"events"`
	Observability struct {
		LogLevel      string `yaml:"log_level"`
		EnableTracing *bool  `yaml:"enable_tracing"`
	} `yaml:"observability"`
}

func defaults() Config {
	return Config{
		HTTPPort:           "8080",
		BackendAPIURL:      "http://localhost:8081",
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		SessionTTL:         7 * 24 * time.Hour,
		WorkspaceIdleTTL:   30 * time.Minute,
		KafkaTopic:         "storefront-events",
		LogLevel:           "info",
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// Load builds the config. A missing YAML file or .env is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Server.HTTPPort != "" {
		cfg.HTTPPort = f.Server.HTTPPort
	}
	if f.Server.MaxRequestBodySize > 0 {
		cfg.MaxRequestBodySize = f.Server.MaxRequestBodySize
	}
	if f.Server.CookieSecure != nil {
		cfg.CookieSecure = *f.Server.CookieSecure
	}
	if f.Backend.APIURL != "" {
		cfg.BackendAPIURL = f.Backend.APIURL
	}
	if f.Backend.BreakerMaxFailures > 0 {
		cfg.BreakerMaxFailures = f.Backend.BreakerMaxFailures
	}
	if f.Session.RedisAddr != "" {
		cfg.RedisAddr = f.Session.RedisAddr
	}
	if f.Session.RedisPassword != "" {
		cfg.RedisPassword = f.Session.RedisPassword
	}
	if f.Session.RedisDB > 0 {
		cfg.RedisDB = f.Session.RedisDB
	}
	if len(f.Events.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Events.KafkaBrokers
	}
	if f.Events.KafkaTopic != "" {
		cfg.KafkaTopic = f.Events.KafkaTopic
	}
	if f.Observability.LogLevel != "" {
		cfg.LogLevel = f.Observability.LogLevel
	}
	if f.Observability.EnableTracing != nil {
		cfg.EnableTracing = *f.Observability.EnableTracing
	}

	durations := []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{f.Server.RequestTimeout, &cfg.RequestTimeout, "server.request_timeout"},
		{f.Server.ShutdownTimeout, &cfg.ShutdownTimeout, "server.shutdown_timeout"},
		{f.Backend.BreakerOpenTimeout, &cfg.BreakerOpenTimeout, "backend.breaker_open_timeout"},
		{f.Session.TTL, &cfg.SessionTTL, "session.ttl"},
		{f.Session.IdleTTL, &cfg.WorkspaceIdleTTL, "session.workspace_idle_ttl"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.BackendAPIURL = getEnv("BACKEND_API_URL", cfg.BackendAPIURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return err
	}
	if cfg.WorkspaceIdleTTL, err = getDuration("WORKSPACE_IDLE_TTL", cfg.WorkspaceIdleTTL); err != nil {
		return err
	}
	if cfg.BreakerOpenTimeout, err = getDuration("BREAKER_OPEN_TIMEOUT", cfg.BreakerOpenTimeout); err != nil {
		return err
	}

	if v := getEnv("MAX_REQUEST_BODY_SIZE", ""); v != "" {
		if cfg.MaxRequestBodySize, err = strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("parse MAX_REQUEST_BODY_SIZE: %w", err)
		}
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
	}
	if v := getEnv("BREAKER_MAX_FAILURES", ""); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parse BREAKER_MAX_FAILURES: %w", err)
		}
		cfg.BreakerMaxFailures = uint32(n)
	}
	if cfg.EnableTracing, err = getBool("ENABLE_TRACING", cfg.EnableTracing); err != nil {
		return err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.CookieSecure); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
