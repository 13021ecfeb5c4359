// Package config loads the table layer's tunables: lock behavior, MVCC
// mode, schema limits, and identity-sequence bump policy. Shape (struct
// tree, JSON tags, time.Duration fields, environment-variable override,
// default-path probing) follows the teacher's pkg/config/config.go
// verbatim, re-scoped away from the teacher's server/pool/cache surface
// to the settings this module's table coordinator, lock manager, and
// column machinery actually read (database.Settings,
// lock.DeadlockCheckInterval, a session's default lock timeout).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/lock"
)

// Config is the table layer's full settings tree.
type Config struct {
	Lock   LockConfig   `json:"lock"`
	MVCC   MVCCConfig   `json:"mvcc"`
	Schema SchemaConfig `json:"schema"`
	Index  IndexConfig  `json:"index"`
}

// LockConfig controls the lock manager's wait/deadlock-check behavior
// (spec.md §4.4).
type LockConfig struct {
	// DefaultTimeout is the lock wait budget a new session gets unless
	// it overrides its own (spec.md §8 scenario 2).
	DefaultTimeout time.Duration `json:"default_timeout"`
	// DeadlockCheckInterval bounds how long a waiter sleeps before
	// re-checking for a deadlock cycle (spec.md §8 scenario 3).
	DeadlockCheckInterval time.Duration `json:"deadlock_check_interval"`
}

// MVCCConfig controls whether the database runs in multi-version mode
// (spec.md §4.4, §9) and how aggressively it reclaims old versions.
type MVCCConfig struct {
	Enabled        bool          `json:"enabled"`
	GCInterval     time.Duration `json:"gc_interval"`
	GCAgeThreshold time.Duration `json:"gc_age_threshold"`
}

// SchemaConfig bounds table shape (spec.md §8's TOO_MANY_COLUMNS_1
// boundary).
type SchemaConfig struct {
	MaxColumnsPerTable int `json:"max_columns_per_table"`
}

// IndexConfig controls secondary-index maintenance.
type IndexConfig struct {
	// BuildBatchSize is how many rows a secondary index's initial build
	// pass processes per batch when backfilling from the scan index.
	BuildBatchSize int `json:"build_batch_size"`
	// BumpIdentityOnManualInsert controls whether a manual INSERT that
	// supplies an identity column's value advances that column's
	// sequence (spec.md §8's sequence invariant; spec.md §8 scenario 1's
	// OVERRIDING SYSTEM VALUE case).
	BumpIdentityOnManualInsert bool `json:"bump_identity_on_manual_insert"`
}

// DefaultConfig returns the table layer's default settings.
func DefaultConfig() *Config {
	return &Config{
		Lock: LockConfig{
			DefaultTimeout:        30 * time.Second,
			DeadlockCheckInterval: 1 * time.Second,
		},
		MVCC: MVCCConfig{
			Enabled:        true,
			GCInterval:     5 * time.Minute,
			GCAgeThreshold: 1 * time.Hour,
		},
		Schema: SchemaConfig{
			MaxColumnsPerTable: 1024,
		},
		Index: IndexConfig{
			BuildBatchSize:             1000,
			BumpIdentityOnManualInsert: true,
		},
	}
}

// LoadConfig loads settings from a JSON file at configPath, falling
// back to DefaultConfig when configPath is empty. Values present in the
// file override the default for only the fields they set.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config: file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigOrDefault tries the TABLECORE_CONFIG environment variable,
// then a short list of common paths, falling back to DefaultConfig if
// none load.
func LoadConfigOrDefault() *Config {
	if envPath := os.Getenv("TABLECORE_CONFIG"); envPath != "" {
		if cfg, err := LoadConfig(envPath); err == nil {
			return cfg
		}
	}

	possiblePaths := []string{
		"config.json",
		"./config/config.json",
		"/etc/tablecore/config.json",
	}
	for _, path := range possiblePaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if cfg, err := LoadConfig(absPath); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

func validateConfig(cfg *Config) error {
	if cfg.Lock.DefaultTimeout <= 0 {
		return fmt.Errorf("config: lock.default_timeout must be positive")
	}
	if cfg.Lock.DeadlockCheckInterval <= 0 {
		return fmt.Errorf("config: lock.deadlock_check_interval must be positive")
	}
	if cfg.Schema.MaxColumnsPerTable < 1 {
		return fmt.Errorf("config: schema.max_columns_per_table must be at least 1")
	}
	if cfg.Index.BuildBatchSize < 1 {
		return fmt.Errorf("config: index.build_batch_size must be at least 1")
	}
	return nil
}

// Settings projects the schema/index facets of Config into the
// database.Settings shape pkg/database's Database implementations read.
func (c *Config) Settings() database.Settings {
	return database.Settings{
		MaxColumnsPerTable:         c.Schema.MaxColumnsPerTable,
		IndexBuildBatchSize:        c.Index.BuildBatchSize,
		BumpIdentityOnManualInsert: c.Index.BumpIdentityOnManualInsert,
	}
}

// Apply installs lock-related settings that live as package state
// rather than being threaded through every call (pkg/lock's
// DeadlockCheckInterval). Call once at process startup before any
// lock.Coordinator is created.
func (c *Config) Apply() {
	lock.DeadlockCheckInterval = c.Lock.DeadlockCheckInterval
}
