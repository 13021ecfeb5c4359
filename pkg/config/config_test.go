package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/lock"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Lock.DefaultTimeout)
	assert.Equal(t, 1*time.Second, cfg.Lock.DeadlockCheckInterval)

	assert.True(t, cfg.MVCC.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.MVCC.GCInterval)
	assert.Equal(t, 1*time.Hour, cfg.MVCC.GCAgeThreshold)

	assert.Equal(t, 1024, cfg.Schema.MaxColumnsPerTable)

	assert.Equal(t, 1000, cfg.Index.BuildBatchSize)
	assert.True(t, cfg.Index.BumpIdentityOnManualInsert)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("non_existent_config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json"), 0644))

	cfg, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_InvalidLockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"lock": map[string]interface{}{"default_timeout": 0},
	})
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "lock.default_timeout")
}

func TestLoadConfig_InvalidMaxColumns(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"schema": map[string]interface{}{"max_columns_per_table": 0},
	})
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "schema.max_columns_per_table")
}

func TestLoadConfig_InvalidBuildBatchSize(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"index": map[string]interface{}{"build_batch_size": 0},
	})
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "index.build_batch_size")
}

func TestLoadConfig_ValidConfigOverridesOnlySetFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"schema": map[string]interface{}{"max_columns_per_table": 64},
	})
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Schema.MaxColumnsPerTable)
	// Untouched fields keep their default.
	assert.Equal(t, 30*time.Second, cfg.Lock.DefaultTimeout)
	assert.True(t, cfg.MVCC.Enabled)
}

func TestLoadConfigOrDefault_WithEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")
	data, _ := json.Marshal(map[string]interface{}{
		"schema": map[string]interface{}{"max_columns_per_table": 8},
	})
	require.NoError(t, os.WriteFile(configPath, data, 0644))

	oldEnv := os.Getenv("TABLECORE_CONFIG")
	t.Cleanup(func() { os.Setenv("TABLECORE_CONFIG", oldEnv) })
	os.Setenv("TABLECORE_CONFIG", configPath)

	cfg := LoadConfigOrDefault()
	assert.Equal(t, 8, cfg.Schema.MaxColumnsPerTable)
}

func TestLoadConfigOrDefault_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	oldEnv := os.Getenv("TABLECORE_CONFIG")
	os.Unsetenv("TABLECORE_CONFIG")
	t.Cleanup(func() { os.Setenv("TABLECORE_CONFIG", oldEnv) })

	cfg := LoadConfigOrDefault()
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Settings(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.Settings()
	assert.Equal(t, cfg.Schema.MaxColumnsPerTable, s.MaxColumnsPerTable)
	assert.Equal(t, cfg.Index.BuildBatchSize, s.IndexBuildBatchSize)
	assert.Equal(t, cfg.Index.BumpIdentityOnManualInsert, s.BumpIdentityOnManualInsert)
}

func TestConfig_ApplyInstallsDeadlockCheckInterval(t *testing.T) {
	original := lock.DeadlockCheckInterval
	t.Cleanup(func() { lock.DeadlockCheckInterval = original })

	cfg := DefaultConfig()
	cfg.Lock.DeadlockCheckInterval = 250 * time.Millisecond
	cfg.Apply()
	assert.Equal(t, 250*time.Millisecond, lock.DeadlockCheckInterval)
}

func TestConfigRoundTripsThroughJSON(t *testing.T) {
	cfg := DefaultConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var parsed Config
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, *cfg, parsed)
}
