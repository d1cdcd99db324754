// file: internal/config/config_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestInitConfig tests configuration initialization with defaults
func TestInitConfig(t *testing.T) {
	// Arrange
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Act
	InitConfig()

	// Assert
	if AppConfig.DatabaseType != "pebble" {
		t.Errorf("Expected database type 'pebble', got '%s'", AppConfig.DatabaseType)
	}
	if AppConfig.EnableSQLite {
		t.Error("Expected SQLite to be disabled by default")
	}
	if AppConfig.DatabasePath != "petmatch.pebble" {
		t.Errorf("Expected default database path, got '%s'", AppConfig.DatabasePath)
	}
	if AppConfig.Port != "8080" || AppConfig.Host != "localhost" {
		t.Errorf("Unexpected listen address %s:%s", AppConfig.Host, AppConfig.Port)
	}
	if AppConfig.RateLimitPerMinute != 120 || AppConfig.RateLimitBurst != 20 {
		t.Errorf("Unexpected rate limit defaults %d/%d", AppConfig.RateLimitPerMinute, AppConfig.RateLimitBurst)
	}
	if AppConfig.MaxRequestBytes != 1<<20 {
		t.Errorf("Expected 1MiB request limit, got %d", AppConfig.MaxRequestBytes)
	}
	if AppConfig.MatchCacheTTL != 5*time.Minute {
		t.Errorf("Expected 5m cache TTL, got %v", AppConfig.MatchCacheTTL)
	}
}

func TestInitConfig_NormalizesDatabaseType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sqlite3", "sqlite"},
		{"SQLite", "sqlite"},
		{" pebble ", "pebble"},
		{"", "pebble"},
	}
	for _, tt := range tests {
		viper.Reset()
		viper.Set("database_type", tt.in)
		InitConfig()
		if AppConfig.DatabaseType != tt.want {
			t.Errorf("database_type %q normalized to %q, want %q", tt.in, AppConfig.DatabaseType, tt.want)
		}
	}
	viper.Reset()
}

func TestInitConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("port", "9090")
	viper.Set("match_cache_ttl", "30s")
	viper.Set("enable_sqlite3_i_know_the_risks", true)
	InitConfig()

	if AppConfig.Port != "9090" {
		t.Errorf("Expected port override, got %s", AppConfig.Port)
	}
	if AppConfig.MatchCacheTTL != 30*time.Second {
		t.Errorf("Expected 30s TTL, got %v", AppConfig.MatchCacheTTL)
	}
	if !AppConfig.EnableSQLite {
		t.Error("Expected SQLite flag override")
	}
}

func TestInitConfig_InvalidTTLFallsBack(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("match_cache_ttl", "-1s")
	InitConfig()

	if AppConfig.MatchCacheTTL != 5*time.Minute {
		t.Errorf("Expected fallback TTL, got %v", AppConfig.MatchCacheTTL)
	}
}
