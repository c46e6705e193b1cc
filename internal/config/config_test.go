package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:               "abc",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range low",
			config: Config{
				Port:               "0",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name: "invalid port - out of range high",
			config: Config{
				Port:               "70000",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid rate limit - too small",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 0,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1 request per minute",
		},
		{
			name: "invalid rate limit - too large",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 200000,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid rate limit 200000: must be at most 100000 requests per minute",
		},
		{
			name: "missing database path",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       "",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "invalid eval concurrency - too small",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    0,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid eval concurrency 0: must be at least 1",
		},
		{
			name: "invalid eval concurrency - too large",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    100,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid eval concurrency 100: must be at most 64",
		},
		{
			name: "invalid shutdown timeout - too short",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    500 * time.Millisecond,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
		{
			name: "invalid shutdown timeout - too long",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    10 * time.Minute,
				LogLevel:           "info",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid shutdown timeout 10m0s: must be at most 5 minutes",
		},
		{
			name: "invalid log level",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "verbose",
				LogFormat:          "text",
			},
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name: "invalid log format",
			config: Config{
				Port:               "8080",
				RateLimitPerMinute: 120,
				SQLiteDBPath:       ":memory:",
				EvalConcurrency:    4,
				ShutdownTimeout:    30 * time.Second,
				LogLevel:           "info",
				LogFormat:          "xml",
			},
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"PORT":                  os.Getenv("PORT"),
		"RATE_LIMIT_PER_MINUTE": os.Getenv("RATE_LIMIT_PER_MINUTE"),
		"SQLITE_DB_PATH":        os.Getenv("SQLITE_DB_PATH"),
		"EVAL_CONCURRENCY":      os.Getenv("EVAL_CONCURRENCY"),
		"SHUTDOWN_TIMEOUT":      os.Getenv("SHUTDOWN_TIMEOUT"),
		"LOG_LEVEL":             os.Getenv("LOG_LEVEL"),
		"LOG_FORMAT":            os.Getenv("LOG_FORMAT"),
	}

	// Clean environment
	for key := range originalVars {
		os.Unsetenv(key)
	}

	// Restore env vars at end of test
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}
		if cfg.SQLiteDBPath != "./data/costs.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/costs.db", cfg.SQLiteDBPath)
		}
		if cfg.EvalConcurrency != 4 {
			t.Errorf("Load() EvalConcurrency = %v, want 4", cfg.EvalConcurrency)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.LogFormat != "text" {
			t.Errorf("Load() LogFormat = %v, want text", cfg.LogFormat)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("RATE_LIMIT_PER_MINUTE", "240")
		os.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		os.Setenv("EVAL_CONCURRENCY", "8")
		os.Setenv("SHUTDOWN_TIMEOUT", "45s")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("LOG_FORMAT", "json")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.RateLimitPerMinute != 240 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 240", cfg.RateLimitPerMinute)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.EvalConcurrency != 8 {
			t.Errorf("Load() EvalConcurrency = %v, want 8", cfg.EvalConcurrency)
		}
		if cfg.ShutdownTimeout != 45*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("EVAL_CONCURRENCY", "invalid")
		os.Setenv("SHUTDOWN_TIMEOUT", "invalid")

		cfg := Load()

		if cfg.EvalConcurrency != 4 {
			t.Errorf("Load() EvalConcurrency = %v, want 4 (default for invalid input)", cfg.EvalConcurrency)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("Config.SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || func() bool {
		for i := 0; i <= len(s)-len(substr); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}())
}
