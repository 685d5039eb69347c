package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/little-lemon/internal/infrastructure/storage"
)

type Config struct {
	Environment string
	HTTPAddr    string

	StorageBackend storage.Backend
	LevelDBPath    string
	DatabaseURL    string
	StorageKey     string

	// empty means the simulated in-process API
	ReservationAPIURL string
	SubmitSuccessRate float64
	APITimeout        time.Duration

	WarmDays     int
	WarmInterval time.Duration

	CookieHashKey  []byte // base64, optional
	CookieBlockKey []byte // base64, optional

	RateLimitPerSecond float64
	RateLimitBurst     int

	Location *time.Location
}

// Load reads .env (when present) into the environment and then calls FromEnv.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Environment:       envDefault("ENV", "development"),
		HTTPAddr:          envDefault("HTTP_ADDR", ":8080"),
		LevelDBPath:       envDefault("LEVELDB_PATH", "./data/bookings"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StorageKey:        envDefault("STORAGE_KEY", "little-lemon-bookings"),
		ReservationAPIURL: strings.TrimSpace(os.Getenv("RESERVATION_API_URL")),
	}

	var err error
	if cfg.StorageBackend, err = storage.ParseBackend(os.Getenv("STORAGE_BACKEND")); err != nil {
		return Config{}, err
	}
	if cfg.StorageBackend == storage.BackendPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
	}

	if cfg.SubmitSuccessRate, err = envFloat("SUBMIT_SUCCESS_RATE", 0.9); err != nil {
		return Config{}, err
	}
	if cfg.SubmitSuccessRate < 0 || cfg.SubmitSuccessRate > 1 {
		return Config{}, fmt.Errorf("SUBMIT_SUCCESS_RATE must be within [0,1]")
	}

	timeoutMS, err := envInt("API_TIMEOUT_MS", 2000)
	if err != nil || timeoutMS < 1 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT_MS")
	}
	cfg.APITimeout = time.Duration(timeoutMS) * time.Millisecond

	if cfg.WarmDays, err = envInt("WARM_DAYS", 7); err != nil || cfg.WarmDays < 0 {
		return Config{}, fmt.Errorf("invalid WARM_DAYS")
	}
	warmSec, err := envInt("WARM_INTERVAL_SECONDS", 3600)
	if err != nil || warmSec < 1 {
		return Config{}, fmt.Errorf("invalid WARM_INTERVAL_SECONDS")
	}
	cfg.WarmInterval = time.Duration(warmSec) * time.Second

	if cfg.RateLimitPerSecond, err = envFloat("RATE_LIMIT_PER_SECOND", 5); err != nil || cfg.RateLimitPerSecond <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND")
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 10); err != nil || cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST")
	}

	hashKey := strings.TrimSpace(os.Getenv("COOKIE_HASH_KEY"))
	blockKey := strings.TrimSpace(os.Getenv("COOKIE_BLOCK_KEY"))
	if (hashKey == "") != (blockKey == "") {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY must be set together")
	}
	if hashKey != "" {
		if cfg.CookieHashKey, err = decodeB64(hashKey); err != nil {
			return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
		if cfg.CookieBlockKey, err = decodeB64(blockKey); err != nil {
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
		switch len(cfg.CookieBlockKey) {
		case 16, 24, 32:
		default:
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(cfg.CookieBlockKey))
		}
	}

	tz := envDefault("TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return cfg, nil
}

// DraftsEnabled reports whether cookie keys were configured.
func (c Config) DraftsEnabled() bool {
	return len(c.CookieHashKey) > 0 && len(c.CookieBlockKey) > 0
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt(k string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func envFloat(k string, d float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func decodeB64(v string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(v)
}
