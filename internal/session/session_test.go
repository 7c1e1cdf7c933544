package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"coinsec/internal/clock"
	"coinsec/internal/engine"
	"coinsec/internal/store"
)

func TestActiveExpiresByTTL(t *testing.T) {
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := engine.NewService(store.NewMemory(), clk, logger)
	reg := NewRegistry(svc, clk, logger, time.Second, 2*time.Minute)

	reg.Touch("alice")
	clk.Advance(time.Minute)
	reg.Touch("bob")

	if got := reg.Active(); len(got) != 2 {
		t.Fatalf("active = %v, want both players", got)
	}

	// alice has now been silent for 2m30s, bob for 1m30s.
	clk.Advance(90 * time.Second)
	got := reg.Active()
	if len(got) != 1 || got[0] != "bob" {
		t.Fatalf("active after expiry = %v, want [bob]", got)
	}
}

func TestTickActiveAdvancesSnapshots(t *testing.T) {
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	svc := engine.NewService(mem, clk, logger)
	reg := NewRegistry(svc, clk, logger, time.Second, 2*time.Minute)

	ctx := context.Background()
	if _, err := svc.Fetch(ctx, "alice", ""); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	reg.Touch("alice")

	clk.Advance(time.Second)
	reg.TickActive(ctx)

	snap, err := mem.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !snap.LastTick.Equal(clk.T) {
		t.Fatalf("lastTick = %v, want %v", snap.LastTick, clk.T)
	}
}
