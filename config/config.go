package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config aggregates application configuration values.
type Config struct {
	Mode     string
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Snapshot SnapshotConfig
	Ledger   LedgerConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	GinMode           string
	AllowedOriginsCSV string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// SnapshotConfig selects where the ledger snapshot lives.
type SnapshotConfig struct {
	Backend         string // file|mongo
	Path            string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoTimeout    time.Duration
}

// LedgerConfig holds the initial system limits and seeding behaviour.
type LedgerConfig struct {
	DailyTransferLimit     decimal.Decimal
	MonthlyWithdrawalLimit decimal.Decimal
	SeedDemoData           bool
}

const (
	ModeServe = "serve"
	ModeCLI   = "cli"

	BackendFile  = "file"
	BackendMongo = "mongo"
)

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultSnapshotPath    = "ledger.json"
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "ledger"
	defaultMongoCollection = "snapshots"
	defaultMongoTimeout    = 6 * time.Second
	defaultDailyTransfer   = "10000"
	defaultMonthlyWithdraw = "50000"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Mode: strings.ToLower(valueOrDefault("APP_MODE", ModeServe)),
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			GinMode:           valueOrDefault("GIN_MODE", "release"),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Snapshot: SnapshotConfig{
			Backend:         strings.ToLower(valueOrDefault("SNAPSHOT_BACKEND", BackendFile)),
			Path:            valueOrDefault("SNAPSHOT_PATH", defaultSnapshotPath),
			MongoURI:        valueOrDefault("MONGO_URI", defaultMongoURI),
			MongoDatabase:   valueOrDefault("MONGO_DATABASE", defaultMongoDatabase),
			MongoCollection: valueOrDefault("MONGO_COLLECTION", defaultMongoCollection),
		},
		Ledger: LedgerConfig{
			SeedDemoData: parseBoolWithDefault("SEED_DEMO_DATA", true),
		},
	}

	if cfg.Mode != ModeServe && cfg.Mode != ModeCLI {
		return Config{}, fmt.Errorf("invalid APP_MODE %q", cfg.Mode)
	}
	if cfg.Snapshot.Backend != BackendFile && cfg.Snapshot.Backend != BackendMongo {
		return Config{}, fmt.Errorf("invalid SNAPSHOT_BACKEND %q", cfg.Snapshot.Backend)
	}
	switch cfg.HTTP.GinMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("invalid GIN_MODE %q", cfg.HTTP.GinMode)
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"MONGO_TIMEOUT", defaultMongoTimeout, &cfg.Snapshot.MongoTimeout},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	if cfg.Ledger.DailyTransferLimit, err = parsePositiveDecimal("DAILY_TRANSFER_LIMIT", defaultDailyTransfer); err != nil {
		return Config{}, err
	}
	if cfg.Ledger.MonthlyWithdrawalLimit, err = parsePositiveDecimal("MONTHLY_WITHDRAWAL_LIMIT", defaultMonthlyWithdraw); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// AllowedOrigins splits the CSV origin list, dropping blanks.
func (c HTTPConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOriginsCSV, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Addr is the host:port pair the HTTP server listens on.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

func parsePositiveDecimal(key, fallback string) (decimal.Decimal, error) {
	v := valueOrDefault(key, fallback)
	amount, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return amount, nil
}
