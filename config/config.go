package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"arenaapp/database"
	"arenaapp/domain/entities"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string `toml:"environment"` // "development", "production" or "test"
	LogLevel    string `toml:"log_level"`

	// Database configuration
	DatabaseURL  string `toml:"database_url"`
	DatabaseName string `toml:"database_name"`

	// NATS configuration
	NATSServers string `toml:"nats_servers"` // NATS server addresses (comma-separated), empty disables NATS

	// Contest lock configuration
	LockBackend string        `toml:"lock_backend"` // "local" or "redis"
	RedisAddr   string        `toml:"redis_addr"`
	LockTTL     time.Duration `toml:"lock_ttl"`

	// HTTP API
	HTTPPort string `toml:"http_port"`

	// Discord notifications, disabled when the token is empty
	DiscordToken     string `toml:"discord_token"`
	DiscordChannelID string `toml:"discord_channel_id"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `toml:"otel_enabled"`
	OTelServiceName          string `toml:"otel_service_name"`
	OTelExporterType         string `toml:"otel_exporter_type"` // "stdout", "otlp" or "none"
	OTelOTLPEndpoint         string `toml:"otel_otlp_endpoint"`
	OTelExportIntervalMillis int    `toml:"otel_export_interval_millis"`

	// Arena defaults applied on first initialization
	FeeBps              int64         `toml:"fee_bps"`
	MinBet              int64         `toml:"min_bet"`
	MinStakeToCreate    int64         `toml:"min_stake_to_create"`
	DefaultVotingWindow time.Duration `toml:"default_voting_window"`
	Treasury            string        `toml:"treasury"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// ArenaDefaults returns the arena configuration used when the arena is first initialized
func (c *Config) ArenaDefaults() *entities.Arena {
	return &entities.Arena{
		FeeBps:              c.FeeBps,
		MinBet:              c.MinBet,
		MinStakeToCreate:    c.MinStakeToCreate,
		DefaultVotingWindow: c.DefaultVotingWindow,
		Treasury:            c.Treasury,
	}
}

// Defaults returns the built-in configuration before any file or environment overrides
func Defaults() *Config {
	return &Config{
		Environment:              "development",
		LogLevel:                 "info",
		LockBackend:              "local",
		LockTTL:                  30 * time.Second,
		HTTPPort:                 "8080",
		OTelServiceName:          "arena",
		OTelExporterType:         "stdout",
		OTelExportIntervalMillis: 60000,
		FeeBps:                   500,
		MinBet:                   10_000_000,
		MinStakeToCreate:         100_000_000,
		DefaultVotingWindow:      time.Hour,
		Treasury:                 "treasury",
	}
}

// load builds the configuration from defaults, an optional TOML file and environment variables
func load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Defaults()

	if path := os.Getenv("ARENA_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides overwrites fields whose environment variable is set
func applyEnvOverrides(config *Config) {
	setStr(&config.Environment, "ENVIRONMENT")
	setStr(&config.LogLevel, "LOG_LEVEL")

	setStr(&config.DatabaseURL, "DATABASE_URL")
	setStr(&config.DatabaseName, "DATABASE_NAME")

	setStr(&config.NATSServers, "NATS_SERVERS")

	setStr(&config.LockBackend, "LOCK_BACKEND")
	setStr(&config.RedisAddr, "REDIS_ADDR")
	setDuration(&config.LockTTL, "LOCK_TTL")

	setStr(&config.HTTPPort, "HTTP_PORT")

	setStr(&config.DiscordToken, "DISCORD_TOKEN")
	setStr(&config.DiscordChannelID, "DISCORD_CHANNEL_ID")

	setBool(&config.OTelEnabled, "OTEL_ENABLED")
	setStr(&config.OTelServiceName, "OTEL_SERVICE_NAME")
	setStr(&config.OTelExporterType, "OTEL_EXPORTER_TYPE")
	setStr(&config.OTelOTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setInt(&config.OTelExportIntervalMillis, "OTEL_EXPORT_INTERVAL_MILLIS")

	setInt64(&config.FeeBps, "ARENA_FEE_BPS")
	setInt64(&config.MinBet, "ARENA_MIN_BET")
	setInt64(&config.MinStakeToCreate, "ARENA_MIN_STAKE")
	setDuration(&config.DefaultVotingWindow, "ARENA_VOTING_WINDOW")
	setStr(&config.Treasury, "ARENA_TREASURY")
}

func (c *Config) validate() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	switch c.LockBackend {
	case "local":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when LOCK_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend)
	}
	if c.DiscordToken != "" && c.DiscordChannelID == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}
	if err := c.ArenaDefaults().Validate(); err != nil {
		return fmt.Errorf("invalid arena defaults: %w", err)
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setStr(dst *string, key string) {
	*dst = getEnvWithDefault(key, *dst)
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	config := Defaults()
	config.Environment = "test"
	config.OTelExporterType = "none"
	return config
}
