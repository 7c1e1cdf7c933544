package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinsec/internal/game"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Load(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing player err = %v, want ErrNotFound", err)
	}

	snap := game.DefaultSnapshot(testStart)
	snap.Points = 42.5
	snap.Investments["secco-tech"] = game.Investment{AmountInvested: 10000, LastUpdated: testStart}
	if err := m.Save(ctx, "alice", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Points != 42.5 {
		t.Fatalf("points = %v", got.Points)
	}
	pos := got.Investments["secco-tech"]
	if pos.AmountInvested != 10000 || !pos.LastUpdated.Equal(testStart) {
		t.Fatalf("position = %+v", pos)
	}

	// The stored copy is isolated from the caller's snapshot.
	snap.Points = 0
	snap.Investments["secco-tech"] = game.Investment{AmountInvested: 1, LastUpdated: testStart}
	again, _ := m.Load(ctx, "alice")
	if again.Points != 42.5 || again.Investments["secco-tech"].AmountInvested != 10000 {
		t.Fatal("stored snapshot aliased caller memory")
	}
}

func TestMemoryPlayerIDsSorted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"carol", "alice", "bob"} {
		if err := m.Save(ctx, id, game.DefaultSnapshot(testStart)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	ids, err := m.PlayerIDs(ctx)
	if err != nil {
		t.Fatalf("PlayerIDs: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestMemoryTopByPoints(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for id, pts := range map[string]float64{"alice": 300, "bob": 900, "carol": 100} {
		snap := game.DefaultSnapshot(testStart)
		snap.Points = pts
		if err := m.Save(ctx, id, snap); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	rows, err := m.TopByPoints(ctx, 2)
	if err != nil {
		t.Fatalf("TopByPoints: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].PlayerID != "bob" || rows[0].Rank != 1 || rows[1].PlayerID != "alice" || rows[1].Rank != 2 {
		t.Fatalf("ranking wrong: %+v", rows)
	}
}

func TestMemoryPurchasesNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 3; i++ {
		err := m.RecordPurchase(ctx, game.Purchase{
			ID:        string(rune('a' + i)),
			PlayerID:  "alice",
			Kind:      "booster",
			CreatedAt: testStart.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
	}
	got, err := m.Purchases(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("Purchases: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("purchases = %+v", got)
	}
}
