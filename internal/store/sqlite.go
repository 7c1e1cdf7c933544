package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"coinsec/internal/game"
)

// SQLite is the single-file backend used for local play and small
// deployments. Same row shape as the Postgres store.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			player_id  TEXT PRIMARY KEY,
			snapshot   TEXT NOT NULL,
			points     REAL NOT NULL DEFAULT 0,
			last_tick  INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS players_points_idx ON players (points DESC);

		CREATE TABLE IF NOT EXISTS purchases (
			id               TEXT PRIMARY KEY,
			player_id        TEXT NOT NULL,
			kind             TEXT NOT NULL,
			amount_nanoton   INTEGER NOT NULL,
			booster_end_time INTEGER NOT NULL,
			created_at       INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS purchases_player_idx ON purchases (player_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, playerID string) (game.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot FROM players WHERE player_id = ?
	`, playerID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load player %s: %w", playerID, err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: player %s: %v", ErrCorrupt, playerID, err)
	}
	if snap.Upgrades == nil || snap.Investments == nil || snap.LastTick.IsZero() {
		return game.Snapshot{}, fmt.Errorf("%w: player %s: missing required fields", ErrCorrupt, playerID)
	}
	return snap, nil
}

func (s *SQLite) Save(ctx context.Context, playerID string, snap game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (player_id, snapshot, points, last_tick, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE
		SET snapshot = excluded.snapshot,
		    points = excluded.points,
		    last_tick = excluded.last_tick,
		    updated_at = excluded.updated_at
	`, playerID, string(raw), snap.Points, snap.LastTick.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save player %s: %w", playerID, err)
	}
	return nil
}

func (s *SQLite) PlayerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_id FROM players ORDER BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLite) TopByPoints(ctx context.Context, limit int) ([]game.LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, points
		FROM players
		ORDER BY points DESC, player_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.LeaderboardRow
	var rank int64 = 1
	for rows.Next() {
		var r game.LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.Points); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) RecordPurchase(ctx context.Context, p game.Purchase) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, player_id, kind, amount_nanoton, booster_end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.PlayerID, p.Kind, p.AmountNanoton, p.BoosterEndTime.UnixMilli(), p.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}

func (s *SQLite) Purchases(ctx context.Context, playerID string, limit int) ([]game.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, kind, amount_nanoton, booster_end_time, created_at
		FROM purchases
		WHERE player_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Purchase
	for rows.Next() {
		var p game.Purchase
		var end, created int64
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.Kind, &p.AmountNanoton, &end, &created); err != nil {
			return nil, err
		}
		p.BoosterEndTime = time.UnixMilli(end).UTC()
		p.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
