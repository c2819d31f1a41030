package main

import (
	"context"
	"errors"
	"testing"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/config"
	"github.com/kingveneer/ecs-c-learning/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		cfg  config.LoggingConfig
		want zapcore.Level
	}{
		{config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{config.LoggingConfig{Level: "loud"}, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		log, err := newLogger(tt.cfg)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(tt.want))
		if tt.want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(tt.want-1))
		}
	}
}

type fakeHistory struct {
	wins   map[int]int
	recent []persist.BattleRow
	err    error
	limit  int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]persist.BattleRow, error) {
	f.limit = limit
	return f.recent, f.err
}

func (f *fakeHistory) WinCounts(context.Context) (map[int]int, error) {
	return f.wins, f.err
}

func TestHistoryLines(t *testing.T) {
	p := message.NewPrinter(language.English)
	wins := map[int]int{battle.TeamA: 1200, battle.TeamB: 3, battle.Draw: 1}
	recent := []persist.BattleRow{
		{ID: 42, Round: 2, Winner: battle.TeamB, Turns: 17, SurvivorsB: 3},
		{ID: 41, Round: 1, Winner: battle.Draw, Turns: 100},
	}

	lines := historyLines(p, wins, recent)
	require.Len(t, lines, 6)
	assert.Equal(t, statLine{"Stored battles", "1,204"}, lines[0])
	assert.Equal(t, "1,200", lines[1].value)
	assert.Equal(t, "1", lines[3].value)
	assert.Equal(t, "#42 round 2: team B", lines[4].label)
	assert.Equal(t, "17 turns, 0/3 alive", lines[4].value)
	assert.Equal(t, "#41 round 1: draw", lines[5].label)
}

func TestHistoryLinesEmptyStore(t *testing.T) {
	lines := historyLines(message.NewPrinter(language.English), map[int]int{}, nil)
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, "0", l.value, l.label)
	}
}

func TestPrintHistory(t *testing.T) {
	out := report{p: message.NewPrinter(language.English)}
	h := &fakeHistory{wins: map[int]int{battle.TeamA: 1}}
	require.NoError(t, printHistory(context.Background(), out, h))
	assert.Equal(t, historyLimit, h.limit)

	h.err = errors.New("connection reset")
	err := printHistory(context.Background(), out, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history: connection reset")
}
