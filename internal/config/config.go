package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Auth
		Search
		Tasks
		DailyReads
		Audit
		Purge
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level      string
		File       string // Empty disables the rotated JSON file
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
	Auth struct {
		JWTSecret       string        // HS256 signing key for bearer tokens
		TokenExpiry     time.Duration // Fixed token validity, no refresh
		SessionSecret   string        // Back-office session and CSRF key
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Search struct {
		RatePerSecond float64 // Per-client search requests per second
		Burst         int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	DailyReads struct {
		Enabled  bool
		Schedule string // Cron format: "0 4 * * *" = daily at 04:00
		Count    int    // Books flagged as daily reads per rotation
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Purge struct {
		RetentionDays int // Days a soft-deleted book is kept before removal
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_file_max_size", 50)
	v.SetDefault("log_file_max_backups", 5)
	v.SetDefault("log_file_max_age", 28)
	v.SetDefault("log_compress", true)

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")           // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("search_rate_per_second", 2.0)
	v.SetDefault("search_burst", 5)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("daily_reads_enabled", false)
	v.SetDefault("daily_reads_schedule", "0 4 * * *")
	v.SetDefault("daily_reads_count", 5)

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("purge_retention_days", 30)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_FILE_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_FILE_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_FILE_MAX_AGE"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Search: Search{
			RatePerSecond: v.GetFloat64("SEARCH_RATE_PER_SECOND"),
			Burst:         v.GetInt("SEARCH_BURST"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		DailyReads: DailyReads{
			Enabled:  v.GetBool("DAILY_READS_ENABLED"),
			Schedule: v.GetString("DAILY_READS_SCHEDULE"),
			Count:    v.GetInt("DAILY_READS_COUNT"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Purge: Purge{
			RetentionDays: v.GetInt("PURGE_RETENTION_DAYS"),
		},
	}
}
