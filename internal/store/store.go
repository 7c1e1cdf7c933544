// Package store is the persistence gateway for player snapshots. The
// game core only sees this interface; backends are free to keep rows in
// memory, SQLite, or Postgres as long as every snapshot field, the
// per-investment lastUpdated included, round-trips losslessly.
package store

import (
	"context"
	"errors"

	"coinsec/internal/game"
)

var (
	// ErrNotFound means the player has no saved snapshot yet; the
	// caller builds defaults and proceeds.
	ErrNotFound = errors.New("player not found")

	// ErrCorrupt means a row exists but cannot be decoded. The caller
	// is expected to discard it and reinitialize.
	ErrCorrupt = errors.New("corrupt snapshot record")
)

type Store interface {
	Load(ctx context.Context, playerID string) (game.Snapshot, error)
	Save(ctx context.Context, playerID string, s game.Snapshot) error

	// PlayerIDs lists every persisted player, for the sweep worker.
	PlayerIDs(ctx context.Context) ([]string, error)

	// TopByPoints returns up to limit players ordered by points.
	TopByPoints(ctx context.Context, limit int) ([]game.LeaderboardRow, error)

	// RecordPurchase appends a verified booster payment; Purchases
	// returns the most recent ones, newest first.
	RecordPurchase(ctx context.Context, p game.Purchase) error
	Purchases(ctx context.Context, playerID string, limit int) ([]game.Purchase, error)

	Close() error
}
