// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/petmatch/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetCmdState restores package flags, viper and AppConfig after a test
func resetCmdState(t *testing.T) {
	t.Helper()
	origCfgFile := cfgFile
	origDBPath := databasePath
	origConfig := config.AppConfig
	t.Cleanup(func() {
		cfgFile = origCfgFile
		databasePath = origDBPath
		config.AppConfig = origConfig
		viper.Reset()
	})
	viper.Reset()
}

func TestInitConfigCreatesDatabaseDirectory(t *testing.T) {
	resetCmdState(t)
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "reports.pebble")

	cfgFile = filepath.Join(tempDir, "missing.yaml")
	databasePath = dbPath

	initConfig()

	_, err := os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err, "expected database directory to exist")
	assert.Equal(t, "pebble", config.AppConfig.DatabaseType)
}

func TestInitConfigUsesHomeConfig(t *testing.T) {
	resetCmdState(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".petmatch.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("port: \"9191\"\nrate_limit_per_minute: 0\n"), 0o644))

	t.Setenv("HOME", tempDir)
	cfgFile = ""
	databasePath = ""

	initConfig()

	assert.Equal(t, configPath, viper.ConfigFileUsed())
	assert.Equal(t, "9191", config.AppConfig.Port)
	assert.Zero(t, config.AppConfig.RateLimitPerMinute)
}

func TestInitConfigEnvOverride(t *testing.T) {
	resetCmdState(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PETMATCH_PORT", "7070")
	t.Setenv("PETMATCH_MATCH_CACHE_TTL", "30s")
	cfgFile = ""
	databasePath = ""

	initConfig()

	assert.Equal(t, "7070", config.AppConfig.Port)
	assert.Equal(t, "30s", config.AppConfig.MatchCacheTTL.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "match", "import", "list", "config", "diagnostics"} {
		assert.True(t, names[want], "missing %s command", want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	assert.NotNil(t, serveCmd.Flags().Lookup("rate-limit"))
}

func TestOpenStoreRejectsSQLiteWithoutFlag(t *testing.T) {
	resetCmdState(t)
	config.AppConfig = config.Config{
		DatabaseType: "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "reports.db"),
	}
	err := openStore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQLite3 is not enabled")
}
