package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Auth configuration
	Auth AuthConfig

	// RateLimit configuration
	RateLimit RateLimitConfig

	// Jobs configuration
	Jobs JobsConfig

	// Audit trail configuration
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds token and password settings
type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RateLimitConfig holds per-user request limits
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	MaxTrackedClients int
}

// JobsConfig holds background schedule settings
type JobsConfig struct {
	// GaugeRefreshSchedule is a cron spec for refreshing business gauges
	GaugeRefreshSchedule string
}

// AuditConfig controls the audit trail. Events go to stdout when Dir is
// empty.
type AuditConfig struct {
	Enabled  bool
	Dir      string
	MaxSize  int64
	MaxFiles int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		RateLimit:     loadRateLimitConfig(),
		Jobs:          loadJobsConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("WORKBOARD_HOST", "0.0.0.0"),
		Port:            getEnv("WORKBOARD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("WORKBOARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WORKBOARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("WORKBOARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("WORKBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("WORKBOARD_MAX_BODY_BYTES", 5<<20),
		CORSOrigins:     splitList(getEnv("WORKBOARD_CORS_ORIGINS", "*")),
		HealthPort:      getEnv("WORKBOARD_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if driver := getEnv("WORKBOARD_DB_DRIVER", ""); driver != "" {
		cfg.Driver = driver
	}
	if dsn := getEnv("WORKBOARD_DB_DSN", ""); dsn != "" {
		cfg.DSN = dsn
	}
	if maxConns := getEnvInt("WORKBOARD_DB_MAX_OPEN_CONNS", 0); maxConns > 0 {
		cfg.MaxOpenConns = maxConns
	}
	if idle := getEnvInt("WORKBOARD_DB_MAX_IDLE_CONNS", 0); idle > 0 {
		cfg.MaxIdleConns = idle
	}
	if lifetime := getEnvDuration("WORKBOARD_DB_CONN_MAX_LIFETIME", 0); lifetime > 0 {
		cfg.ConnMaxLifetime = lifetime
	}
	if timeout := getEnvDuration("WORKBOARD_DB_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}

	// Redis config
	cfg.RedisURL = getEnv("WORKBOARD_REDIS_URL", "")
	if redisPassword := getEnv("WORKBOARD_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("WORKBOARD_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisPoolSize := getEnvInt("WORKBOARD_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// S3 config
	cfg.S3Bucket = getEnv("WORKBOARD_S3_BUCKET", "")
	cfg.S3Endpoint = getEnv("WORKBOARD_S3_ENDPOINT", "")
	if s3Region := getEnv("WORKBOARD_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	cfg.S3AccessKey = getEnv("WORKBOARD_S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getEnv("WORKBOARD_S3_SECRET_KEY", "")
	cfg.S3UsePathStyle = getEnvBool("WORKBOARD_S3_USE_PATH_STYLE", false)
	cfg.S3PublicBaseURL = getEnv("WORKBOARD_S3_PUBLIC_BASE_URL", "")

	return cfg
}

// loadAuthConfig loads auth configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:  getEnv("WORKBOARD_JWT_SECRET", ""),
		JWTIssuer:  getEnv("WORKBOARD_JWT_ISSUER", "workboard"),
		TokenTTL:   getEnvDuration("WORKBOARD_TOKEN_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("WORKBOARD_BCRYPT_COST", 10),
	}
}

// loadRateLimitConfig loads rate limit configuration from environment
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("WORKBOARD_RATE_LIMIT_ENABLED", true),
		RequestsPerMinute: getEnvInt("WORKBOARD_RATE_LIMIT_PER_MINUTE", 300),
		MaxTrackedClients: getEnvInt("WORKBOARD_RATE_LIMIT_MAX_CLIENTS", 10000),
	}
}

// loadJobsConfig loads background job configuration from environment
func loadJobsConfig() JobsConfig {
	return JobsConfig{
		GaugeRefreshSchedule: getEnv("WORKBOARD_GAUGE_REFRESH_SCHEDULE", "@every 1m"),
	}
}

// loadAuditConfig loads audit trail configuration from environment
func loadAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:  getEnvBool("WORKBOARD_AUDIT_ENABLED", true),
		Dir:      getEnv("WORKBOARD_AUDIT_LOG_DIR", ""),
		MaxSize:  getEnvInt64("WORKBOARD_AUDIT_MAX_SIZE", 100<<20),
		MaxFiles: getEnvInt("WORKBOARD_AUDIT_MAX_FILES", 10),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("WORKBOARD_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("WORKBOARD_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("WORKBOARD_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("WORKBOARD_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("WORKBOARD_OTEL_SERVICE_NAME", "workboard"),
		OTelServiceVersion: getEnv("WORKBOARD_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("WORKBOARD_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("WORKBOARD_OTEL_SAMPLE_RATIO", 1.0),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config based on driver
	switch c.Storage.Driver {
	case storage.DriverPostgres, storage.DriverSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("database DSN is required")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Storage.Driver)
	}
	if c.Storage.S3Bucket == "" && (c.Storage.S3AccessKey != "" || c.Storage.S3Endpoint != "") {
		return fmt.Errorf("S3 bucket is required when S3 is configured")
	}

	// Validate auth config
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}

	if _, err := cron.ParseStandard(c.Jobs.GaugeRefreshSchedule); err != nil {
		return fmt.Errorf("invalid gauge refresh schedule: %w", err)
	}

	if c.Audit.Enabled && c.Audit.MaxFiles < 0 {
		return fmt.Errorf("audit max files cannot be negative")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// OTel converts the observability settings for observability.InitOTel
func (c *Config) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
		SampleRatio:    c.Observability.OTelSampleRatio,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadStorageConfig loads only the storage settings. Commands that never
// serve traffic, such as migrate, use it to skip auth validation.
func LoadStorageConfig() storage.Config {
	return loadStorageConfig()
}
