package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skirmish.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[session]
entity_capacity = 64
scratch_arena_bytes = 4096

[battle]
max_turns = 30
tick_rate = "50ms"
rounds = 3

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(64), cfg.Session.EntityCapacity)
	assert.Equal(t, 4096, cfg.Session.ScratchArenaBytes)
	assert.Equal(t, 1<<20, cfg.Session.ComponentPoolBytes, "absent keys keep defaults")
	assert.Equal(t, 30, cfg.Battle.MaxTurns)
	assert.Equal(t, 50*time.Millisecond, cfg.Battle.TickRate)
	assert.Equal(t, 3, cfg.Battle.Rounds)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "[session\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "[session]\nentity_capacity = 0\n[battle]\nrounds = 0\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "entity_capacity")
	assert.ErrorContains(t, err, "rounds")
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "skirmish.toml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Battle.Roster)
}
