package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported DATABASE_TYPE values
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	MongoDatabase string
	JWTSecret     string
	JWTExpire     time.Duration
	CORSOrigin    string
	PollTTL       time.Duration
	SweepInterval time.Duration
	Debug         bool
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present; it never
// overrides variables already set.
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	flags := flag.NewFlagSet("quickly-quiz", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or mongo)")
	flags.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")
	flags.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DatabaseSQLite)
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo:
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	cfg.MongoDatabase = envOr("MONGO_DATABASE", "quickpoll")

	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = envOr("CORS_ORIGIN", "http://localhost:5173")
	}

	if !cfg.Debug {
		if v := os.Getenv("DEBUG"); v != "" {
			debug, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid DEBUG env variable")
			}
			cfg.Debug = debug
		}
	}

	var err error
	if cfg.JWTExpire, err = envDuration("JWT_EXPIRE", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PollTTL, err = envDuration("POLL_TTL", 72*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = envDuration("SWEEP_INTERVAL", time.Hour); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration reads a Go duration, also accepting whole days like "30d".
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := parseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable %q", key, v)
	}
	return d, nil
}

func parseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
