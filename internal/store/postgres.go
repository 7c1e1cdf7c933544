package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coinsec/internal/game"
)

// Postgres persists one JSONB snapshot row per player. Points and
// last_tick are mirrored into plain columns so the leaderboard and the
// sweep worker never decode every snapshot. Saves bump a version
// column; the observable write policy stays last-write-wins.
type Postgres struct {
	pool *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			player_id  text PRIMARY KEY,
			snapshot   jsonb NOT NULL,
			points     double precision NOT NULL DEFAULT 0,
			last_tick  timestamptz NOT NULL,
			version    bigint NOT NULL DEFAULT 1,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS players_points_idx ON players (points DESC);

		CREATE TABLE IF NOT EXISTS purchases (
			id               uuid PRIMARY KEY,
			player_id        text NOT NULL,
			kind             text NOT NULL,
			amount_nanoton   bigint NOT NULL,
			booster_end_time timestamptz NOT NULL,
			created_at       timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS purchases_player_idx ON purchases (player_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, playerID string) (game.Snapshot, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `
		SELECT snapshot
		FROM players
		WHERE player_id = $1
	`, playerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load player %s: %w", playerID, err)
	}

	var s game.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: player %s: %v", ErrCorrupt, playerID, err)
	}
	if s.Upgrades == nil || s.Investments == nil || s.LastTick.IsZero() {
		return game.Snapshot{}, fmt.Errorf("%w: player %s: missing required fields", ErrCorrupt, playerID)
	}
	return s, nil
}

func (p *Postgres) Save(ctx context.Context, playerID string, s game.Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO players (player_id, snapshot, points, last_tick, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (player_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot,
		    points = EXCLUDED.points,
		    last_tick = EXCLUDED.last_tick,
		    version = players.version + 1,
		    updated_at = now()
	`, playerID, raw, s.Points, s.LastTick)
	if err != nil {
		return fmt.Errorf("save player %s: %w", playerID, err)
	}
	return nil
}

func (p *Postgres) PlayerIDs(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT player_id FROM players ORDER BY player_id`)
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

func (p *Postgres) TopByPoints(ctx context.Context, limit int) ([]game.LeaderboardRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT player_id, points
		FROM players
		ORDER BY points DESC, player_id
		LIMIT $1
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

func (p *Postgres) RecordPurchase(ctx context.Context, pur game.Purchase) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO purchases (id, player_id, kind, amount_nanoton, booster_end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pur.ID, pur.PlayerID, pur.Kind, pur.AmountNanoton, pur.BoosterEndTime, pur.CreatedAt)
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}

func (p *Postgres) Purchases(ctx context.Context, playerID string, limit int) ([]game.Purchase, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, player_id, kind, amount_nanoton, booster_end_time, created_at
		FROM purchases
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Purchase
	for rows.Next() {
		var pur game.Purchase
		if err := rows.Scan(&pur.ID, &pur.PlayerID, &pur.Kind, &pur.AmountNanoton, &pur.BoosterEndTime, &pur.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pur)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
