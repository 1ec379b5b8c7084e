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
		Auth
		ListenNotes
		CatalogRefresh
		Tasks
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
	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int
	}
	ListenNotes struct {
		APIKey  string
		BaseURL string // Override for tests; empty means the production API
	}
	CatalogRefresh struct {
		Enabled    bool
		Schedule   string        // Cron format: "0 4 * * *" = daily at 04:00
		StaleAfter time.Duration // Refresh mirrors not updated within this window
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

const DefaultDatabasePath = "./podhaven.db"

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_expiry", "720h") // 30 days
	v.SetDefault("bcrypt_cost", 12)

	// Listen Notes defaults
	v.SetDefault("listen_notes_api_key", "")
	v.SetDefault("listen_notes_base_url", "")

	// Catalog refresh defaults
	v.SetDefault("catalog_refresh_enabled", false)
	v.SetDefault("catalog_refresh_schedule", "0 4 * * *") // Daily at 04:00
	v.SetDefault("catalog_refresh_stale_after", "168h")   // One week

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

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
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		ListenNotes: ListenNotes{
			APIKey:  v.GetString("LISTEN_NOTES_API_KEY"),
			BaseURL: v.GetString("LISTEN_NOTES_BASE_URL"),
		},
		CatalogRefresh: CatalogRefresh{
			Enabled:    v.GetBool("CATALOG_REFRESH_ENABLED"),
			Schedule:   v.GetString("CATALOG_REFRESH_SCHEDULE"),
			StaleAfter: v.GetDuration("CATALOG_REFRESH_STALE_AFTER"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
