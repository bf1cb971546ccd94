package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	domainconfig "brainbrowser/domain/config"
	"brainbrowser/pkg/utils"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Config holds all process configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"serverAddress" validate:"required"`
	Environment     string        `yaml:"environment" validate:"oneof=development staging production test"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gte=0"`

	// Storage
	Store StoreConfig `yaml:"store"`

	// AWS configuration
	AWSRegion string `yaml:"awsRegion"`

	// Engine config file, watched for changes
	ConfigFile string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"logLevel" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool   `yaml:"enableMetrics"`
	EnableTracing bool   `yaml:"enableTracing"`
	EnableCORS    bool   `yaml:"enableCORS"`
	OTelEndpoint  string `yaml:"otelEndpoint"`
}

// StoreConfig selects and configures the session store
type StoreConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory sqlite badger dynamodb"`
	Path          string        `yaml:"path"`
	DynamoDBTable string        `yaml:"dynamodbTable"`
	Key           string        `yaml:"key" validate:"required"`
	SyncWrites    bool          `yaml:"syncWrites"`
	LeaseDuration time.Duration `yaml:"leaseDuration" validate:"gte=0"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		ShutdownTimeout: 30 * time.Second,
		Store: StoreConfig{
			Backend:       BackendMemory,
			DynamoDBTable: "brainbrowser",
			Key:           "brainBrowser",
			LeaseDuration: time.Minute,
		},
		AWSRegion:     "us-west-2",
		LogLevel:      "info",
		EnableMetrics: true,
		EnableCORS:    true,
		OTelEndpoint:  "localhost:4317",
	}
}

// LoadConfig layers environment variables over the optional YAML file
// named by CONFIG_FILE over the defaults
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("STORE_PATH", c.Store.Path)
	c.Store.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.Store.DynamoDBTable))
	c.Store.Key = getEnv("STORAGE_KEY", c.Store.Key)
	c.Store.SyncWrites = getEnvBool("STORE_SYNC_WRITES", c.Store.SyncWrites)
	c.Store.LeaseDuration = getEnvDuration("STORE_LEASE_DURATION", c.Store.LeaseDuration)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.OTelEndpoint = getEnv("OTEL_ENDPOINT", c.OTelEndpoint)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Store.Backend == BackendDynamoDB && c.Store.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
	}
	if c.EnableTracing && c.OTelEndpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when tracing is enabled")
	}
	return nil
}

// EngineConfig returns the starting engine configuration: the
// environment preset merged with the engine section of the config file
func (c *Config) EngineConfig() (domainconfig.EngineConfig, error) {
	base := domainconfig.LoadEngineConfig(c.Environment)
	if c.ConfigFile == "" {
		return base, nil
	}
	return LoadEngineFile(c.ConfigFile, base)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations or bare seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
