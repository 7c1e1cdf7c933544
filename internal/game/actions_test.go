package game

import (
	"errors"
	"testing"
	"time"
)

func TestTapEarnsAndSpendsEnergy(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	out, accepted := Tap(snap, baseTime)
	if !accepted {
		t.Fatal("full-energy tap declined")
	}
	if !almostEqual(out.Points, snap.Points+DefaultPointsPerTap) {
		t.Fatalf("tap earned %v, want %v", out.Points-snap.Points, DefaultPointsPerTap)
	}
	if !almostEqual(out.Energy, snap.Energy-EnergyPerTap) {
		t.Fatalf("tap spent %v energy, want %v", snap.Energy-out.Energy, float64(EnergyPerTap))
	}
}

func TestTapDeclinedWhenExhausted(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Energy = 0.5
	out, accepted := Tap(snap, baseTime)
	if accepted {
		t.Fatal("tap accepted with energy below cost")
	}
	if out.Points != snap.Points || out.Energy != snap.Energy {
		t.Fatalf("declined tap mutated state: %+v", out)
	}
}

func TestTapWhileBoosted(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Energy = 0 // booster ignores energy entirely
	end := baseTime.Add(10 * time.Minute)
	snap.BoosterEndTime = &end

	out, accepted := Tap(snap, baseTime)
	if !accepted {
		t.Fatal("boosted tap declined")
	}
	// 0.1 doubled is exactly 0.2.
	if !almostEqual(out.Points-snap.Points, 0.2) {
		t.Fatalf("boosted tap earned %v, want 0.2", out.Points-snap.Points)
	}
	// Reconcile pins the bar to max while boosted and the tap spends none.
	if out.Energy != snap.MaxEnergy {
		t.Fatalf("boosted energy = %v, want %v", out.Energy, snap.MaxEnergy)
	}
}

func TestBuyUpgradeTapEffect(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 200

	out, err := BuyUpgrade(snap, "powerTap", baseTime)
	if err != nil {
		t.Fatalf("BuyUpgrade: %v", err)
	}
	if !almostEqual(out.Points, 50) {
		t.Fatalf("points after buy = %v, want 50", out.Points)
	}
	if !almostEqual(out.PointsPerTap, snap.PointsPerTap+snap.Upgrades["powerTap"].Increase) {
		t.Fatalf("pointsPerTap = %v after tap upgrade", out.PointsPerTap)
	}
	up := out.Upgrades["powerTap"]
	if up.Level != 2 {
		t.Fatalf("level = %d, want 2", up.Level)
	}
	if up.Price != 270 {
		t.Fatalf("escalated price = %v, want 270", up.Price)
	}
}

func TestBuyUpgradePassiveEffect(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 1000

	out, err := BuyUpgrade(snap, "basicAuto", baseTime)
	if err != nil {
		t.Fatalf("BuyUpgrade: %v", err)
	}
	if !almostEqual(out.PassiveIncome, snap.PassiveIncome+snap.Upgrades["basicAuto"].Increase) {
		t.Fatalf("passiveIncome = %v after passive upgrade", out.PassiveIncome)
	}
	if out.PointsPerTap != snap.PointsPerTap {
		t.Fatalf("passive upgrade touched pointsPerTap: %v", out.PointsPerTap)
	}
}

func TestBuyUpgradeDeclines(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 10

	if _, err := BuyUpgrade(snap, "powerTap", baseTime); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("unaffordable buy: err = %v, want ErrInsufficientPoints", err)
	}
	snap.Points = 1e9
	if _, err := BuyUpgrade(snap, "noSuchUpgrade", baseTime); !errors.Is(err, ErrUnknownUpgrade) {
		t.Fatalf("unknown id: err = %v, want ErrUnknownUpgrade", err)
	}
}

func TestBuyStock(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 25000

	out, err := BuyStock(snap, "secco-tech", 10000, baseTime)
	if err != nil {
		t.Fatalf("BuyStock: %v", err)
	}
	if !almostEqual(out.Points, 15000) {
		t.Fatalf("points after invest = %v, want 15000", out.Points)
	}
	pos := out.Investments["secco-tech"]
	if !almostEqual(pos.AmountInvested, 10000) || !pos.LastUpdated.Equal(baseTime) {
		t.Fatalf("position = %+v", pos)
	}

	// A second buy tops up the same position.
	later := baseTime.Add(time.Minute)
	out2, err := BuyStock(out, "secco-tech", 5000, later)
	if err != nil {
		t.Fatalf("second BuyStock: %v", err)
	}
	pos2 := out2.Investments["secco-tech"]
	if !almostEqual(pos2.AmountInvested, 15000) || !pos2.LastUpdated.Equal(later) {
		t.Fatalf("topped-up position = %+v", pos2)
	}
}

func TestBuyStockDeclines(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Points = 100

	if _, err := BuyStock(snap, "secco-tech", 10000, baseTime); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("unaffordable invest: err = %v", err)
	}
	if _, err := BuyStock(snap, "no-such-stock", 10, baseTime); !errors.Is(err, ErrUnknownStock) {
		t.Fatalf("unknown stock: err = %v", err)
	}
	if _, err := BuyStock(snap, "secco-tech", 0, baseTime); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v", err)
	}
	if _, err := BuyStock(snap, "secco-tech", -5, baseTime); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: err = %v", err)
	}
}

func TestApplyBoosterReplacesWindow(t *testing.T) {
	snap := DefaultSnapshot(baseTime)
	snap.Energy = 3

	out := ApplyBooster(snap, baseTime, 30*time.Minute)
	if out.BoosterEndTime == nil || !out.BoosterEndTime.Equal(baseTime.Add(30*time.Minute)) {
		t.Fatalf("booster end = %v", out.BoosterEndTime)
	}
	if out.Energy != out.MaxEnergy {
		t.Fatalf("booster did not refill energy: %v", out.Energy)
	}

	// Buying again mid-window restarts the clock rather than stacking.
	later := baseTime.Add(20 * time.Minute)
	out2 := ApplyBooster(out, later, 30*time.Minute)
	if !out2.BoosterEndTime.Equal(later.Add(30 * time.Minute)) {
		t.Fatalf("second booster end = %v, want %v", out2.BoosterEndTime, later.Add(30*time.Minute))
	}
}

func TestClaimReferralBonusOnce(t *testing.T) {
	snap := DefaultSnapshot(baseTime)

	out, granted := ClaimReferralBonus(snap)
	if !granted {
		t.Fatal("first claim not granted")
	}
	if !almostEqual(out.Points, snap.Points+ReferralBonusPoints) {
		t.Fatalf("bonus added %v, want %v", out.Points-snap.Points, float64(ReferralBonusPoints))
	}
	if !out.ReferralBonusClaimed {
		t.Fatal("claimed flag not set")
	}

	again, granted := ClaimReferralBonus(out)
	if granted {
		t.Fatal("second claim granted")
	}
	if again.Points != out.Points {
		t.Fatalf("second claim changed points: %v", again.Points)
	}
}
