package config

import (
	"bytes"
	"dispatch-route-service/internal/services"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process-level settings read from the environment.
type Config struct {
	DatabaseURL      string
	Port             string
	LogLevel         string
	RedisURL         string
	EstimateCacheTTL time.Duration

	ORSAPIKey     string
	ORSBaseURL    string
	ORSProfile    string
	ORSRatePerSec float64

	SeedPath        string
	OptimizerConfig string
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads a .env file into the environment if one exists.
// It reports whether a file was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     Get("DATABASE_URL", ""),
		Port:            Get("PORT", "8080"),
		LogLevel:        Get("LOG_LEVEL", "info"),
		RedisURL:        Get("REDIS_URL", ""),
		ORSAPIKey:       Get("ORS_API_KEY", ""),
		ORSBaseURL:      Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSProfile:      Get("ORS_PROFILE", "driving-car"),
		SeedPath:        Get("SEED_PATH", "data/seeds/dispatch.json"),
		OptimizerConfig: Get("OPTIMIZER_CONFIG", ""),
	}

	var errs []error

	ttl, err := time.ParseDuration(Get("ESTIMATE_CACHE_TTL", "24h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ESTIMATE_CACHE_TTL: %w", err))
	} else if ttl <= 0 {
		errs = append(errs, fmt.Errorf("ESTIMATE_CACHE_TTL must be > 0, got %s", ttl))
	}
	cfg.EstimateCacheTTL = ttl

	rate, err := strconv.ParseFloat(Get("ORS_RATE_PER_SEC", "2"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("ORS_RATE_PER_SEC: %w", err))
	} else if rate <= 0 {
		errs = append(errs, fmt.Errorf("ORS_RATE_PER_SEC must be > 0, got %v", rate))
	}
	cfg.ORSRatePerSec = rate

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

// LoadOptimizerOptions reads heuristic tuning from a YAML file. An empty path
// yields the defaults. Fields missing from the file keep their defaults.
func LoadOptimizerOptions(path string) (services.Options, error) {
	if strings.TrimSpace(path) == "" {
		return services.DefaultOptions(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return services.Options{}, fmt.Errorf("load optimizer options: read %q: %w", path, err)
	}

	var opts services.Options
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return services.Options{}, fmt.Errorf("load optimizer options: parse %q: %w", path, err)
	}

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return services.Options{}, fmt.Errorf("load optimizer options: %w", err)
	}

	return opts, nil
}
