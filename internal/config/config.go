// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "pebble" (default) or "sqlite"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)

	Host string
	Port string

	RateLimitPerMinute int
	RateLimitBurst     int
	MaxRequestBytes    int64

	// How long computed matches for a stored report are reused
	MatchCacheTTL time.Duration

	// Drop folder watched by the server for report import files; empty disables it
	WatchDir string
}

var AppConfig Config

// EnvPrefix is prepended to every environment override (PETMATCH_PORT, ...)
const EnvPrefix = "PETMATCH"

// SetDefaults registers default values with viper
func SetDefaults() {
	viper.SetDefault("database_path", "petmatch.pebble")
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", "8080")
	viper.SetDefault("rate_limit_per_minute", 120)
	viper.SetDefault("rate_limit_burst", 20)
	viper.SetDefault("max_request_bytes", 1<<20)
	viper.SetDefault("match_cache_ttl", "5m")
	viper.SetDefault("watch_dir", "")
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		DatabasePath:       viper.GetString("database_path"),
		DatabaseType:       viper.GetString("database_type"),
		EnableSQLite:       viper.GetBool("enable_sqlite3_i_know_the_risks"),
		Host:               viper.GetString("host"),
		Port:               viper.GetString("port"),
		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
		MaxRequestBytes:    viper.GetInt64("max_request_bytes"),
		MatchCacheTTL:      viper.GetDuration("match_cache_ttl"),
		WatchDir:           viper.GetString("watch_dir"),
	}

	// Normalize database type
	AppConfig.DatabaseType = strings.ToLower(strings.TrimSpace(AppConfig.DatabaseType))
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}
	if AppConfig.MatchCacheTTL <= 0 {
		AppConfig.MatchCacheTTL = 5 * time.Minute
	}
}
