// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the config file viper loaded, or $HOME/.petmatch.yaml
// when none was found.
func ConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".petmatch.yaml"
	}
	return filepath.Join(home, ".petmatch.yaml")
}

// ConfigMap returns AppConfig keyed the way the config file and viper name
// each setting.
func ConfigMap() map[string]any {
	return map[string]any{
		"database_path":                   AppConfig.DatabasePath,
		"database_type":                   AppConfig.DatabaseType,
		"enable_sqlite3_i_know_the_risks": AppConfig.EnableSQLite,
		"host":                            AppConfig.Host,
		"port":                            AppConfig.Port,
		"rate_limit_per_minute":           AppConfig.RateLimitPerMinute,
		"rate_limit_burst":                AppConfig.RateLimitBurst,
		"max_request_bytes":               AppConfig.MaxRequestBytes,
		"match_cache_ttl":                 AppConfig.MatchCacheTTL.String(),
		"watch_dir":                       AppConfig.WatchDir,
	}
}

// MarshalConfig renders AppConfig as YAML
func MarshalConfig() ([]byte, error) {
	data, err := yaml.Marshal(ConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes the effective configuration to path. An existing
// file is only replaced when overwrite is set.
func SaveConfigToFile(path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := MarshalConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
