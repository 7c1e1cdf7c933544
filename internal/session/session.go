// Package session tracks which players are actively online and drives
// their once-per-second reconciliation ticks.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coinsec/internal/clock"
	"coinsec/internal/engine"
)

// Registry keeps the set of recently seen players. The HTTP layer
// calls Touch on every player request; Run expires entries that have
// been silent longer than the TTL.
type Registry struct {
	svc *engine.Service
	clk clock.Clock
	log *slog.Logger

	tickEvery time.Duration
	ttl       time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewRegistry(svc *engine.Service, clk clock.Clock, logger *slog.Logger, tickEvery, ttl time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Registry{
		svc:       svc,
		clk:       clk,
		log:       logger,
		tickEvery: tickEvery,
		ttl:       ttl,
		lastSeen:  make(map[string]time.Time),
	}
}

// Touch marks a player as online now.
func (r *Registry) Touch(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeen[playerID] = r.clk.Now()
}

// Active returns the players still inside the TTL window, dropping the
// rest. Expired players are not an error; their state simply waits for
// the next fetch or sweep to catch up.
func (r *Registry) Active() []string {
	now := r.clk.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.lastSeen))
	for id, seen := range r.lastSeen {
		if now.Sub(seen) > r.ttl {
			delete(r.lastSeen, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// TickActive reconciles every active player once.
func (r *Registry) TickActive(ctx context.Context) {
	for _, id := range r.Active() {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.svc.Tick(ctx, id); err != nil {
			r.log.Error("session tick failed", "player", id, "err", err)
		}
	}
}

// Run drives the tick loop until the context is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()
	r.log.Info("session ticker started", "every", r.tickEvery, "ttl", r.ttl)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("session ticker stopped")
			return
		case <-ticker.C:
			r.TickActive(ctx)
		}
	}
}
