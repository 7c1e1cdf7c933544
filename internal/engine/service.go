// Package engine binds the pure game rules to a persistence backend and
// a clock. Every operation here is the atomic reconcile-then-act unit
// the HTTP layer and the session scheduler call into.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"coinsec/internal/clock"
	"coinsec/internal/game"
	"coinsec/internal/store"
)

// Service owns every read-modify-write of player snapshots. All
// mutations and reconciliations for one player run under that player's
// lock, so ticks never interleave with discrete actions.
type Service struct {
	store store.Store
	clk   clock.Clock
	log   *slog.Logger

	boosterDuration time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st store.Store, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:           st,
		clk:             clk,
		log:             logger,
		boosterDuration: game.BoosterDurationMinutes * time.Minute,
		locks:           make(map[string]*sync.Mutex),
	}
}

// SetBoosterDuration overrides the default booster window (config knob).
func (s *Service) SetBoosterDuration(d time.Duration) {
	if d > 0 {
		s.boosterDuration = d
	}
}

func (s *Service) playerLock(playerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	return l
}

// load returns the player's current snapshot, building defaults when the
// player is new and recovering with defaults when the stored row cannot
// be decoded. Persistence errors other than not-found/corrupt surface to
// the caller untouched.
func (s *Service) load(ctx context.Context, playerID string) (game.Snapshot, error) {
	snap, err := s.store.Load(ctx, playerID)
	switch {
	case err == nil:
		return snap, nil
	case errors.Is(err, store.ErrNotFound):
		return game.DefaultSnapshot(s.clk.Now()), nil
	case errors.Is(err, store.ErrCorrupt):
		s.log.Warn("discarding corrupt snapshot", "player", playerID, "err", err)
		return game.DefaultSnapshot(s.clk.Now()), nil
	default:
		return game.Snapshot{}, err
	}
}

// save persists best-effort. The reconciled in-memory snapshot stays the
// session's source of truth, so a failed write is logged and surfaced
// but never rolls back the result.
func (s *Service) save(ctx context.Context, playerID string, snap game.Snapshot) error {
	if err := s.store.Save(ctx, playerID, snap); err != nil {
		s.log.Error("snapshot save failed", "player", playerID, "err", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Fetch loads (or initializes) a player, grants the one-time referral
// bonus when a non-empty referral code accompanies the request, and
// returns the snapshot reconciled to now.
func (s *Service) Fetch(ctx context.Context, playerID, referralCode string) (game.Snapshot, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap = game.Reconcile(snap, s.clk.Now())
	if strings.TrimSpace(referralCode) != "" {
		var granted bool
		if snap, granted = game.ClaimReferralBonus(snap); granted {
			s.log.Info("referral bonus granted", "player", playerID)
		}
	}
	return snap, s.save(ctx, playerID, snap)
}

// Tap applies one tap. The snapshot in the result is always the
// reconciled state, whether or not the tap was accepted.
func (s *Service) Tap(ctx context.Context, playerID string) (game.TapResult, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.TapResult{}, err
	}
	next, accepted := game.Tap(snap, s.clk.Now())
	return game.TapResult{Accepted: accepted, Snapshot: next}, s.save(ctx, playerID, next)
}

// BuyUpgrade purchases one level of an upgrade. Declined purchases
// (unknown id, unaffordable) return the sentinel error with the
// reconciled-but-otherwise-unchanged snapshot persisted.
func (s *Service) BuyUpgrade(ctx context.Context, playerID, upgradeID string) (game.Snapshot, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	next, buyErr := game.BuyUpgrade(snap, upgradeID, s.clk.Now())
	if saveErr := s.save(ctx, playerID, next); buyErr == nil {
		buyErr = saveErr
	}
	return next, buyErr
}

// BuyStock allocates points into a catalog stock position.
func (s *Service) BuyStock(ctx context.Context, playerID, stockID string, amount float64) (game.Snapshot, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	next, buyErr := game.BuyStock(snap, stockID, amount, s.clk.Now())
	if saveErr := s.save(ctx, playerID, next); buyErr == nil {
		buyErr = saveErr
	}
	return next, buyErr
}

// ApplyBooster starts the booster window and records the purchase. It
// must only be called after the payment verifier accepted the transfer.
func (s *Service) ApplyBooster(ctx context.Context, playerID, kind string, amountNanoton int64, purchaseID string) (game.Snapshot, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	now := s.clk.Now()
	next := game.ApplyBooster(snap, now, s.boosterDuration)
	if err := s.save(ctx, playerID, next); err != nil {
		return next, err
	}

	pur := game.Purchase{
		ID:             purchaseID,
		PlayerID:       playerID,
		Kind:           kind,
		AmountNanoton:  amountNanoton,
		BoosterEndTime: *next.BoosterEndTime,
		CreatedAt:      now,
	}
	if err := s.store.RecordPurchase(ctx, pur); err != nil {
		// The booster is already live; history is best-effort.
		s.log.Error("purchase record failed", "player", playerID, "err", err)
	}
	return next, nil
}

// Tick reconciles a player with no discrete action attached. The
// session scheduler calls this once per second per foregrounded player.
func (s *Service) Tick(ctx context.Context, playerID string) (game.Snapshot, error) {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	next := game.Reconcile(snap, s.clk.Now())
	return next, s.save(ctx, playerID, next)
}

// Push stores a client-supplied snapshot verbatim, overwriting whatever
// was there. Concurrent devices resolve last-write-wins.
func (s *Service) Push(ctx context.Context, playerID string, snap game.Snapshot) error {
	lock := s.playerLock(playerID)
	lock.Lock()
	defer lock.Unlock()

	if snap.Upgrades == nil || snap.Investments == nil || snap.LastTick.IsZero() {
		return game.ErrMalformedSnapshot
	}
	return s.save(ctx, playerID, snap)
}

// Transactions returns the player's recent booster purchases.
func (s *Service) Transactions(ctx context.Context, playerID string, limit int) ([]game.Purchase, error) {
	return s.store.Purchases(ctx, playerID, limit)
}

// Leaderboard ranks every persisted player by points.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]game.LeaderboardRow, error) {
	return s.store.TopByPoints(ctx, limit)
}

// SweepAll reconciles every persisted player once, logging and skipping
// failures. The background worker uses it to keep long-offline rows
// checkpointed.
func (s *Service) SweepAll(ctx context.Context) (int, error) {
	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return swept, ctx.Err()
		}
		if _, err := s.Tick(ctx, id); err != nil {
			s.log.Error("sweep tick failed", "player", id, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}
