package config

import (
	"strings"
	"testing"
	"time"

	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// validConfig returns a configuration that passes Validate
func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:       "8080",
			HealthPort: "9090",
		},
		Storage: storage.DefaultConfig(),
		Auth: AuthConfig{
			JWTSecret:  testSecret,
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
		Jobs:      JobsConfig{GaugeRefreshSchedule: "@every 1m"},
	}
}

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvTyped tests the typed env helpers
func TestGetEnvTyped(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "TRUE")
	t.Setenv("TEST_BOOL_ONE", "1")
	t.Setenv("TEST_BOOL_NO", "no")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty")
	t.Setenv("TEST_INT64", "5242880")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_DURATION_BAD", "soon")

	if !getEnvBool("TEST_BOOL_TRUE", false) {
		t.Error("getEnvBool(TRUE) = false, want true")
	}
	if !getEnvBool("TEST_BOOL_ONE", false) {
		t.Error("getEnvBool(1) = false, want true")
	}
	if getEnvBool("TEST_BOOL_NO", true) {
		t.Error("getEnvBool(no) = true, want false")
	}
	if got := getEnvInt("TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt() = %v, want 42", got)
	}
	if got := getEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getEnvInt(bad) = %v, want default 7", got)
	}
	if got := getEnvInt64("TEST_INT64", 0); got != 5<<20 {
		t.Errorf("getEnvInt64() = %v, want %v", got, 5<<20)
	}
	if got := getEnvFloat("TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("getEnvFloat() = %v, want 0.25", got)
	}
	if got := getEnvDuration("TEST_DURATION", 0); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 90s", got)
	}
	if got := getEnvDuration("TEST_DURATION_BAD", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration(bad) = %v, want default 1m", got)
	}
}

// TestLoadServerConfig tests the loadServerConfig function
func TestLoadServerConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got := loadServerConfig()
		if got.Port != "8080" || got.HealthPort != "9090" {
			t.Errorf("ports = %v/%v, want 8080/9090", got.Port, got.HealthPort)
		}
		if got.ShutdownTimeout != 30*time.Second {
			t.Errorf("ShutdownTimeout = %v, want 30s", got.ShutdownTimeout)
		}
		if len(got.CORSOrigins) != 1 || got.CORSOrigins[0] != "*" {
			t.Errorf("CORSOrigins = %v, want [*]", got.CORSOrigins)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("WORKBOARD_PORT", "3000")
		t.Setenv("WORKBOARD_READ_TIMEOUT", "30s")
		t.Setenv("WORKBOARD_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

		got := loadServerConfig()
		if got.Port != "3000" {
			t.Errorf("Port = %v, want 3000", got.Port)
		}
		if got.ReadTimeout != 30*time.Second {
			t.Errorf("ReadTimeout = %v, want 30s", got.ReadTimeout)
		}
		if strings.Join(got.CORSOrigins, "|") != "https://a.example.com|https://b.example.com" {
			t.Errorf("CORSOrigins = %v", got.CORSOrigins)
		}
	})
}

// TestLoadStorageConfig tests the loadStorageConfig function
func TestLoadStorageConfig(t *testing.T) {
	t.Setenv("WORKBOARD_DB_DRIVER", "postgres")
	t.Setenv("WORKBOARD_DB_DSN", "postgres://localhost/workboard?sslmode=disable")
	t.Setenv("WORKBOARD_DB_MAX_OPEN_CONNS", "50")
	t.Setenv("WORKBOARD_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WORKBOARD_S3_BUCKET", "avatars")
	t.Setenv("WORKBOARD_S3_USE_PATH_STYLE", "true")

	got := loadStorageConfig()

	if got.Driver != storage.DriverPostgres {
		t.Errorf("Driver = %v, want postgres", got.Driver)
	}
	if got.DSN != "postgres://localhost/workboard?sslmode=disable" {
		t.Errorf("DSN = %v", got.DSN)
	}
	if got.MaxOpenConns != 50 {
		t.Errorf("MaxOpenConns = %v, want 50", got.MaxOpenConns)
	}
	if got.MaxIdleConns != storage.DefaultConfig().MaxIdleConns {
		t.Errorf("MaxIdleConns = %v, want default", got.MaxIdleConns)
	}
	if got.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %v", got.RedisURL)
	}
	if got.S3Bucket != "avatars" || !got.S3UsePathStyle {
		t.Errorf("S3 = %v/%v", got.S3Bucket, got.S3UsePathStyle)
	}
}

// TestLoadObservabilityConfig tests the loadObservabilityConfig function
func TestLoadObservabilityConfig(t *testing.T) {
	t.Setenv("WORKBOARD_LOG_LEVEL", "debug")
	t.Setenv("WORKBOARD_OTEL_ENABLED", "true")
	t.Setenv("WORKBOARD_OTEL_SAMPLE_RATIO", "0.5")

	got := loadObservabilityConfig()

	if got.LogLevel != observability.DebugLevel {
		t.Errorf("LogLevel = %v, want DEBUG", got.LogLevel)
	}
	if !got.OTelEnabled {
		t.Error("OTelEnabled = false, want true")
	}
	if got.OTelSampleRatio != 0.5 {
		t.Errorf("OTelSampleRatio = %v, want 0.5", got.OTelSampleRatio)
	}
	if got.OTelServiceName != "workboard" {
		t.Errorf("OTelServiceName = %v, want workboard", got.OTelServiceName)
	}
}

func TestLoadAuditConfig(t *testing.T) {
	got := loadAuditConfig()
	if !got.Enabled || got.Dir != "" || got.MaxFiles != 10 {
		t.Errorf("defaults = %+v, want enabled stdout trail keeping 10 files", got)
	}

	t.Setenv("WORKBOARD_AUDIT_ENABLED", "false")
	t.Setenv("WORKBOARD_AUDIT_LOG_DIR", "/var/log/workboard")
	t.Setenv("WORKBOARD_AUDIT_MAX_SIZE", "1024")

	got = loadAuditConfig()
	if got.Enabled {
		t.Error("Enabled = true, want false")
	}
	if got.Dir != "/var/log/workboard" {
		t.Errorf("Dir = %v, want /var/log/workboard", got.Dir)
	}
	if got.MaxSize != 1024 {
		t.Errorf("MaxSize = %v, want 1024", got.MaxSize)
	}
}

// TestConfigValidate tests configuration validation
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "missing health port",
			mutate:  func(c *Config) { c.Server.HealthPort = "" },
			wantErr: "health port is required",
		},
		{
			name:    "same server and health port",
			mutate:  func(c *Config) { c.Server.HealthPort = "8080" },
			wantErr: "server port and health port must be different",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mysql" },
			wantErr: "invalid database driver",
		},
		{
			name:    "missing DSN",
			mutate:  func(c *Config) { c.Storage.DSN = "" },
			wantErr: "database DSN is required",
		},
		{
			name:    "S3 without bucket",
			mutate:  func(c *Config) { c.Storage.S3Endpoint = "http://minio:9000" },
			wantErr: "S3 bucket is required",
		},
		{
			name:    "short JWT secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "short" },
			wantErr: "JWT secret must be at least 32 characters",
		},
		{
			name:    "zero token TTL",
			mutate:  func(c *Config) { c.Auth.TokenTTL = 0 },
			wantErr: "token TTL must be positive",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 40 },
			wantErr: "bcrypt cost must be between 4 and 31",
		},
		{
			name:    "rate limit zero while enabled",
			mutate:  func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			wantErr: "rate limit must be positive",
		},
		{
			name:    "bad cron schedule",
			mutate:  func(c *Config) { c.Jobs.GaugeRefreshSchedule = "every minute" },
			wantErr: "invalid gauge refresh schedule",
		},
		{
			name: "otel enabled without endpoint",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelServiceName = "test"
			},
			wantErr: "OpenTelemetry endpoint is required when OTel is enabled",
		},
		{
			name: "otel enabled without service name",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelEndpoint = "localhost:4317"
			},
			wantErr: "OpenTelemetry service name is required when OTel is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfig tests the full load path
func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		t.Setenv("WORKBOARD_JWT_SECRET", testSecret)
		t.Setenv("WORKBOARD_DB_DRIVER", "sqlite3")
		t.Setenv("WORKBOARD_DB_DSN", "file::memory:")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Auth.TokenTTL != 24*time.Hour {
			t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
		}
		otel := cfg.OTel()
		if otel.ServiceName != "workboard" || otel.Enabled {
			t.Errorf("OTel() = %+v", otel)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("WORKBOARD_JWT_SECRET", "")

		if _, err := LoadConfig(); err == nil {
			t.Error("LoadConfig() expected error without JWT secret")
		}
	})

	t.Run("same ports", func(t *testing.T) {
		t.Setenv("WORKBOARD_JWT_SECRET", testSecret)
		t.Setenv("WORKBOARD_PORT", "8080")
		t.Setenv("WORKBOARD_HEALTH_PORT", "8080")

		if _, err := LoadConfig(); err == nil {
			t.Error("LoadConfig() expected error for equal ports")
		}
	})
}
