package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/kingveneer/ecs-c-learning/internal/battle"
)

// BattleRow is one stored battle result. Only the outcome is kept; arena
// contents are never persisted.
type BattleRow struct {
	ID         int64
	Round      int
	Winner     int
	Turns      int
	SurvivorsA int
	SurvivorsB int
	Attacks    int
	Kills      int
	Digest     []byte
	CreatedAt  time.Time
}

// NewBattleRow flattens an outcome and the round's attack counters.
func NewBattleRow(round int, o battle.Outcome, attacks, kills int) BattleRow {
	return BattleRow{
		Round:      round,
		Winner:     o.Winner,
		Turns:      o.Turns,
		SurvivorsA: o.Survivors[battle.TeamA],
		SurvivorsB: o.Survivors[battle.TeamB],
		Attacks:    attacks,
		Kills:      kills,
		Digest:     o.Digest[:],
	}
}

type BattleRepo struct {
	db *DB
}

func NewBattleRepo(db *DB) *BattleRepo {
	return &BattleRepo{db: db}
}

// SaveAll writes a batch of results in a single transaction and fills in
// their IDs.
func (r *BattleRepo) SaveAll(ctx context.Context, rows []BattleRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("battle begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range rows {
		b := &rows[i]
		if err := tx.QueryRow(ctx,
			`INSERT INTO battles (round, winner, turns, survivors_a, survivors_b, attacks, kills, digest)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			b.Round, b.Winner, b.Turns, b.SurvivorsA, b.SurvivorsB, b.Attacks, b.Kills, b.Digest,
		).Scan(&b.ID, &b.CreatedAt); err != nil {
			return fmt.Errorf("battle insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns the newest results, newest first.
func (r *BattleRepo) Recent(ctx context.Context, limit int) ([]BattleRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, round, winner, turns, survivors_a, survivors_b, attacks, kills, digest, created_at
		 FROM battles ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("battle recent: %w", err)
	}
	defer rows.Close()

	var out []BattleRow
	for rows.Next() {
		var b BattleRow
		if err := rows.Scan(
			&b.ID, &b.Round, &b.Winner, &b.Turns, &b.SurvivorsA, &b.SurvivorsB,
			&b.Attacks, &b.Kills, &b.Digest, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("battle recent: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("battle recent: %w", err)
	}
	return out, nil
}

// WinCounts returns how many stored battles each winner value has.
func (r *BattleRepo) WinCounts(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT winner, COUNT(*) FROM battles GROUP BY winner`)
	if err != nil {
		return nil, fmt.Errorf("battle win counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var winner, n int
		if err := rows.Scan(&winner, &n); err != nil {
			return nil, fmt.Errorf("battle win counts: %w", err)
		}
		out[winner] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("battle win counts: %w", err)
	}
	return out, nil
}
