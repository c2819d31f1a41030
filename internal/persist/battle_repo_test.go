package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
	"github.com/kingveneer/ecs-c-learning/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewBattleRow(t *testing.T) {
	o := battle.Outcome{Winner: battle.TeamB, Turns: 12, Survivors: [2]int{0, 4}}
	o.Digest[0] = 0xab

	row := NewBattleRow(3, o, 80, 9)
	assert.Equal(t, 3, row.Round)
	assert.Equal(t, battle.TeamB, row.Winner)
	assert.Equal(t, 0, row.SurvivorsA)
	assert.Equal(t, 4, row.SurvivorsB)
	assert.Equal(t, 80, row.Attacks)
	assert.Len(t, row.Digest, 32)
	assert.Equal(t, byte(0xab), row.Digest[0])
}

// TestBattleRepo needs a scratch PostgreSQL database in SKIRMISH_TEST_DSN.
func TestBattleRepo(t *testing.T) {
	dsn := os.Getenv("SKIRMISH_TEST_DSN")
	if dsn == "" {
		t.Skip("SKIRMISH_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	version, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	repo := NewBattleRepo(db)
	rows := []BattleRow{
		NewBattleRow(1, battle.Outcome{Winner: battle.TeamA, Turns: 5, Survivors: [2]int{2, 0}}, 10, 3),
		NewBattleRow(2, battle.Outcome{Winner: battle.Draw, Turns: 9}, 18, 4),
	}
	require.NoError(t, repo.SaveAll(ctx, rows))
	assert.NotZero(t, rows[0].ID)
	assert.Greater(t, rows[1].ID, rows[0].ID)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, rows[1].ID, recent[0].ID)
	assert.Equal(t, battle.Draw, recent[0].Winner)

	wins, err := repo.WinCounts(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, wins[battle.TeamA], 1)

	db.Close()
	_, err = repo.Recent(ctx, 1)
	assert.ErrorContains(t, err, "battle recent:")
	_, err = repo.WinCounts(ctx)
	assert.ErrorContains(t, err, "battle win counts:")
}
