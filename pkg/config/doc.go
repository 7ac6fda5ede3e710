// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. The CLI loads a .env file first when present.
//
// # Configuration Structure
//
// Server settings:
//
//	WORKBOARD_HOST="0.0.0.0"
//	WORKBOARD_PORT="8080"
//	WORKBOARD_HEALTH_PORT="9090"
//	WORKBOARD_CORS_ORIGINS="https://app.example.com"
//
// Storage settings:
//
//	WORKBOARD_DB_DRIVER="postgres"  # postgres, sqlite3
//	WORKBOARD_DB_DSN="postgres://localhost/workboard?sslmode=disable"
//	WORKBOARD_REDIS_URL="redis://localhost:6379/0"  # empty disables realtime push
//	WORKBOARD_S3_BUCKET="workboard-avatars"          # empty disables avatar upload
//
// Auth settings:
//
//	WORKBOARD_JWT_SECRET="..."  # at least 32 characters
//	WORKBOARD_TOKEN_TTL="24h"
//
// Observability settings:
//
//	WORKBOARD_LOG_LEVEL="info"  # debug, info, warn, error
//	WORKBOARD_OTEL_ENABLED="true"
//	WORKBOARD_OTEL_ENDPOINT="otel-collector:4317"
//	WORKBOARD_GAUGE_REFRESH_SCHEDULE="@every 1m"
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
