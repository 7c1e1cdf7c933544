package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"coinsec/internal/game"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "coinsec.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	if _, err := s.Load(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing player err = %v, want ErrNotFound", err)
	}

	snap := game.DefaultSnapshot(testStart)
	snap.Points = 1234.5
	snap.Energy = 77
	end := testStart.Add(30 * time.Minute)
	snap.BoosterEndTime = &end
	snap.Investments["ton-ventures"] = game.Investment{AmountInvested: 50000, LastUpdated: testStart}
	if err := s.Save(ctx, "alice", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Points != 1234.5 || got.Energy != 77 {
		t.Fatalf("loaded %+v", got)
	}
	if got.BoosterEndTime == nil || !got.BoosterEndTime.Equal(end) {
		t.Fatalf("booster end = %v, want %v", got.BoosterEndTime, end)
	}
	if got.Investments["ton-ventures"].AmountInvested != 50000 {
		t.Fatalf("position = %+v", got.Investments["ton-ventures"])
	}

	// Overwrite wins.
	snap.Points = 2000
	if err := s.Save(ctx, "alice", snap); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err = s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Points != 2000 {
		t.Fatalf("points after overwrite = %v", got.Points)
	}
}

func TestSQLiteTopByPointsAndIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for id, pts := range map[string]float64{"alice": 300, "bob": 900} {
		snap := game.DefaultSnapshot(testStart)
		snap.Points = pts
		if err := s.Save(ctx, id, snap); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	ids, err := s.PlayerIDs(ctx)
	if err != nil {
		t.Fatalf("PlayerIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}

	rows, err := s.TopByPoints(ctx, 10)
	if err != nil {
		t.Fatalf("TopByPoints: %v", err)
	}
	if len(rows) != 2 || rows[0].PlayerID != "bob" || rows[0].Rank != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestSQLitePurchases(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for i := 0; i < 2; i++ {
		err := s.RecordPurchase(ctx, game.Purchase{
			ID:             []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"}[i],
			PlayerID:       "alice",
			Kind:           "booster",
			AmountNanoton:  500000000,
			BoosterEndTime: testStart.Add(30 * time.Minute),
			CreatedAt:      testStart.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordPurchase: %v", err)
		}
	}

	got, err := s.Purchases(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("Purchases: %v", err)
	}
	if len(got) != 2 || got[0].ID != "22222222-2222-2222-2222-222222222222" {
		t.Fatalf("purchases = %+v", got)
	}
	if got[0].AmountNanoton != 500000000 {
		t.Fatalf("amount = %d", got[0].AmountNanoton)
	}
}
