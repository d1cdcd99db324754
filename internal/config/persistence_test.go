// file: internal/config/persistence_test.go
// version: 2.0.0
// guid: 5e6f7a8b-9c0d-1e2f-3a4b-5c6d7e8f9a0b

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func resetConfigTestState() {
	viper.Reset()
	AppConfig = Config{}
}

func TestSaveConfigToFile(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	InitConfig()
	AppConfig.Port = "9000"
	AppConfig.MatchCacheTTL = 90 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "petmatch.yaml")
	if err := SaveConfigToFile(path, false); err != nil {
		t.Fatalf("SaveConfigToFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var saved map[string]any
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}
	if saved["port"] != "9000" {
		t.Errorf("expected port 9000, got %v", saved["port"])
	}
	if saved["match_cache_ttl"] != "1m30s" {
		t.Errorf("expected 1m30s, got %v", saved["match_cache_ttl"])
	}

	// Refuses to clobber without overwrite
	if err := SaveConfigToFile(path, false); err == nil {
		t.Error("expected error when file exists")
	}
	if err := SaveConfigToFile(path, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}

func TestSavedConfigRoundTripsThroughViper(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	InitConfig()
	AppConfig.RateLimitPerMinute = 0
	AppConfig.DatabaseType = "sqlite"
	AppConfig.EnableSQLite = true

	path := filepath.Join(t.TempDir(), "petmatch.yaml")
	if err := SaveConfigToFile(path, false); err != nil {
		t.Fatal(err)
	}

	resetConfigTestState()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper could not read saved file: %v", err)
	}
	InitConfig()

	if AppConfig.RateLimitPerMinute != 0 {
		t.Errorf("expected disabled rate limit, got %d", AppConfig.RateLimitPerMinute)
	}
	if AppConfig.DatabaseType != "sqlite" || !AppConfig.EnableSQLite {
		t.Errorf("expected sqlite enabled, got %q/%v", AppConfig.DatabaseType, AppConfig.EnableSQLite)
	}
	if ConfigFilePath() != path {
		t.Errorf("expected ConfigFilePath %q, got %q", path, ConfigFilePath())
	}
}

func TestSaveConfigToFile_EmptyPath(t *testing.T) {
	if err := SaveConfigToFile("", true); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestConfigFilePathDefault(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	if got := ConfigFilePath(); filepath.Base(got) != ".petmatch.yaml" {
		t.Errorf("expected default .petmatch.yaml, got %q", got)
	}
}
