package storage

import "time"

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config for the storage backends
type Config struct {
	// Database config
	Driver          string // "postgres" or "sqlite3"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Timeout         time.Duration

	// Redis config; realtime delivery is disabled when RedisURL is empty
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// S3 config; avatar uploads are disabled when S3Bucket is empty
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UsePathStyle  bool
	S3PublicBaseURL string
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "file:workboard.db?_foreign_keys=on",
		MaxOpenConns:    20,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		Timeout:         10 * time.Second,
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		S3Region:        "us-east-1",
	}
}
