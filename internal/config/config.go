package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Session  SessionConfig  `toml:"session"`
	Battle   BattleConfig   `toml:"battle"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// SessionConfig sizes the storage core. All byte counts are reserved up front.
type SessionConfig struct {
	EntityCapacity     uint32 `toml:"entity_capacity"`
	ComponentPoolBytes int    `toml:"component_pool_bytes"` // split across the six size classes
	ScratchArenaBytes  int    `toml:"scratch_arena_bytes"`  // per-tick temporaries
	DeathQueueCapacity int    `toml:"death_queue_capacity"`
	StorageCapacity    int    `toml:"storage_capacity"`
}

type BattleConfig struct {
	Roster    string        `toml:"roster"`
	ScriptDir string        `toml:"script_dir"`
	MaxTurns  int           `toml:"max_turns"`
	TickRate  time.Duration `toml:"tick_rate"` // 0 runs turns back to back
	Rounds    int           `toml:"rounds"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables result persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects sizes the storage core cannot be built with.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.EntityCapacity == 0 {
		errs = append(errs, errors.New("session.entity_capacity must be positive"))
	}
	if c.Session.ComponentPoolBytes <= 0 {
		errs = append(errs, errors.New("session.component_pool_bytes must be positive"))
	}
	if c.Session.ScratchArenaBytes <= 0 {
		errs = append(errs, errors.New("session.scratch_arena_bytes must be positive"))
	}
	if c.Battle.MaxTurns <= 0 {
		errs = append(errs, errors.New("battle.max_turns must be positive"))
	}
	if c.Battle.Rounds <= 0 {
		errs = append(errs, errors.New("battle.rounds must be positive"))
	}
	if c.Battle.TickRate < 0 {
		errs = append(errs, errors.New("battle.tick_rate must not be negative"))
	}
	return errors.Join(errs...)
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			EntityCapacity:     1024,
			ComponentPoolBytes: 1 << 20,
			ScratchArenaBytes:  64 << 10,
			DeathQueueCapacity: 64,
			StorageCapacity:    8,
		},
		Battle: BattleConfig{
			Roster:    "data/yaml/roster.yaml",
			ScriptDir: "scripts",
			MaxTurns:  200,
			Rounds:    1,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
