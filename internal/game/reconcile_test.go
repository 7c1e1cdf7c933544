package game

import (
	"testing"
	"time"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReconcileIdempotent(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.PassiveIncome = 10
	snap.Investments["secco-tech"] = Investment{AmountInvested: 10000, LastUpdated: baseTime}

	now := baseTime.Add(90 * time.Minute)
	once := Reconcile(snap, now)
	twice := Reconcile(once, now)

	if !almostEqual(once.Points, twice.Points) {
		t.Fatalf("second reconcile at same instant changed points: %v != %v", once.Points, twice.Points)
	}
	if !almostEqual(once.Energy, twice.Energy) {
		t.Fatalf("second reconcile at same instant changed energy: %v != %v", once.Energy, twice.Energy)
	}
	if !once.LastTick.Equal(twice.LastTick) {
		t.Fatalf("lastTick moved on no-op reconcile: %v != %v", once.LastTick, twice.LastTick)
	}
}

func TestReconcilePointsMonotonic(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 123.4
	for _, dt := range []time.Duration{0, time.Second, time.Hour, 40 * 24 * time.Hour} {
		out := Reconcile(snap, baseTime.Add(dt))
		if out.Points < snap.Points {
			t.Fatalf("points decreased after %v: %v -> %v", dt, snap.Points, out.Points)
		}
	}
}

func TestReconcileEnergyRegen(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Energy = 0

	// Six hours offline from empty restores the full 500.
	full := Reconcile(snap, baseTime.Add(6*time.Hour))
	if !almostEqual(full.Energy, 500) {
		t.Fatalf("6h from empty = %v energy, want 500", full.Energy)
	}

	// Three hours restores exactly half.
	half := Reconcile(snap, baseTime.Add(3*time.Hour))
	if !almostEqual(half.Energy, 250) {
		t.Fatalf("3h from empty = %v energy, want 250", half.Energy)
	}
}

func TestReconcilePassiveAndInvestment(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.PassiveIncome = 60 // one point per second
	snap.Investments["secco-tech"] = Investment{AmountInvested: 10000, LastUpdated: baseTime}

	year := baseTime.Add(time.Duration(SecondsPerYear * float64(time.Second)))
	out := Reconcile(snap, year)

	wantPassive := PassiveEarnings(60, time.Duration(SecondsPerYear)*time.Second)
	wantYield := 1500.0 // 10000 at 15% APY for one year
	want := snap.Points + wantPassive + wantYield
	if !almostEqual(out.Points, want) {
		t.Fatalf("year offline points = %v, want %v", out.Points, want)
	}
	if got := out.Investments["secco-tech"].LastUpdated; !got.Equal(year) {
		t.Fatalf("investment lastUpdated = %v, want %v", got, year)
	}
}

func TestReconcileNegativeElapsedNoop(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 50
	snap.Energy = 100
	snap.Investments["secco-tech"] = Investment{AmountInvested: 10000, LastUpdated: baseTime}

	// Clock skew: now is before lastTick. Nothing accrues and the
	// timestamps never rewind.
	out := Reconcile(snap, baseTime.Add(-time.Hour))
	if !almostEqual(out.Points, 50) || !almostEqual(out.Energy, 100) {
		t.Fatalf("negative elapsed mutated state: points=%v energy=%v", out.Points, out.Energy)
	}
	if !out.LastTick.Equal(baseTime) {
		t.Fatalf("lastTick rewound to %v", out.LastTick)
	}
	if !out.Investments["secco-tech"].LastUpdated.Equal(baseTime) {
		t.Fatalf("investment lastUpdated rewound to %v", out.Investments["secco-tech"].LastUpdated)
	}
}

func TestReconcileBoosterPinsEnergyAndExpires(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Energy = 10
	end := baseTime.Add(30 * time.Minute)
	snap.BoosterEndTime = &end

	// Mid-window the bar is pinned to max regardless of regen math.
	during := Reconcile(snap, baseTime.Add(time.Minute))
	if during.Energy != snap.MaxEnergy {
		t.Fatalf("boosted energy = %v, want pinned to %v", during.Energy, snap.MaxEnergy)
	}
	if during.BoosterEndTime == nil {
		t.Fatal("booster cleared before its end time")
	}

	// Past the window the marker is cleared.
	after := Reconcile(snap, end.Add(time.Second))
	if after.BoosterEndTime != nil {
		t.Fatalf("expired booster still set: %v", after.BoosterEndTime)
	}
}

func TestReconcileSkipsUnknownStock(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Investments["delisted-corp"] = Investment{AmountInvested: 9999, LastUpdated: baseTime}

	out := Reconcile(snap, baseTime.Add(time.Hour))
	if out.Points != snap.Points {
		t.Fatalf("unknown stock accrued yield: %v -> %v", snap.Points, out.Points)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Investments["secco-tech"] = Investment{AmountInvested: 100, LastUpdated: baseTime}
	before := snap.Clone()

	_ = Reconcile(snap, baseTime.Add(time.Hour))

	if !snap.LastTick.Equal(before.LastTick) || snap.Points != before.Points {
		t.Fatal("Reconcile mutated its input snapshot")
	}
	if !snap.Investments["secco-tech"].LastUpdated.Equal(baseTime) {
		t.Fatal("Reconcile mutated input investment map")
	}
}
