// Package config reads server settings from .env files and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/service"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port           string
	GinMode        string
	DevMode        bool
	DataDir        string
	StoreDriver    string
	RateLimitRPS   float64
	RateLimitBurst int
	FetchTimeout   time.Duration
	CacheTTL       time.Duration
	MaxCacheSize   int
	UserAgent      string
	MaxBodyBytes   int64
}

// Default returns the settings used when no environment overrides are set.
func Default() Config {
	return Config{
		Port:           "8082",
		GinMode:        gin.ReleaseMode,
		DataDir:        "data",
		StoreDriver:    StoreMemory,
		RateLimitRPS:   2,
		RateLimitBurst: 5,
		FetchTimeout:   fetcher.DefaultTimeout,
		CacheTTL:       service.DefaultCacheTTL,
		MaxCacheSize:   service.DefaultMaxCacheSize,
		UserAgent:      fetcher.DefaultUserAgent,
		MaxBodyBytes:   fetcher.DefaultMaxBodyBytes,
	}
}

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Load reads .env files, then the environment, on top of Default.
func Load() (Config, error) {
	loadEnv()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Malformed values are reported rather
// than replaced by defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	p := parser{getenv: getenv}

	p.str("PORT", &cfg.Port)
	p.str("GIN_MODE", &cfg.GinMode)
	p.boolean("DEV_MODE", &cfg.DevMode)
	p.str("DATA_DIR", &cfg.DataDir)
	p.str("STORE_DRIVER", &cfg.StoreDriver)
	p.float("RATE_LIMIT_RPS", &cfg.RateLimitRPS)
	p.integer("RATE_LIMIT_BURST", &cfg.RateLimitBurst)
	p.duration("FETCH_TIMEOUT", &cfg.FetchTimeout)
	p.duration("CACHE_TTL", &cfg.CacheTTL)
	p.integer("MAX_CACHE_SIZE", &cfg.MaxCacheSize)
	p.str("USER_AGENT", &cfg.UserAgent)
	p.int64("MAX_BODY_BYTES", &cfg.MaxBodyBytes)

	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("GIN_MODE: unknown mode %q", c.GinMode)
	}
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS: must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST: must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT: must be positive, got %s", c.FetchTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL: must not be negative, got %s", c.CacheTTL)
	}
	if c.MaxCacheSize < 1 {
		return fmt.Errorf("MAX_CACHE_SIZE: must be at least 1, got %d", c.MaxCacheSize)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES: must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// SQLitePath is the database file used by the sqlite store driver.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "analyses.db")
}

func (c Config) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		Timeout:      c.FetchTimeout,
		UserAgent:    c.UserAgent,
		MaxBodyBytes: c.MaxBodyBytes,
	}
}

func (c Config) ServiceOptions() service.Options {
	opts := service.DefaultOptions()
	opts.CacheTTL = c.CacheTTL
	opts.MaxCacheSize = c.MaxCacheSize
	return opts
}

// parser records the first malformed variable.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.err = fmt.Errorf("%s: invalid value %q: %w", key, value, err)
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *parser) boolean(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) int64(key string, dst *int64) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}
