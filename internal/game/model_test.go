package game

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPassiveEarnings(t *testing.T) {
	// 60 points/minute for one minute is 60 points.
	if got := PassiveEarnings(60, time.Minute); !almostEqual(got, 60) {
		t.Fatalf("PassiveEarnings(60, 1m) = %v, want 60", got)
	}
	if got := PassiveEarnings(10, 6*time.Second); !almostEqual(got, 1) {
		t.Fatalf("PassiveEarnings(10, 6s) = %v, want 1", got)
	}
	if got := PassiveEarnings(0, time.Hour); got != 0 {
		t.Fatalf("PassiveEarnings(0, 1h) = %v, want 0", got)
	}
}

func TestInvestmentEarnings(t *testing.T) {
	// 10000 invested at 15% APY for exactly one year yields 1500.
	if got := InvestmentEarnings(10000, 0.15, time.Duration(SecondsPerYear)*time.Second); !almostEqual(got, 1500) {
		t.Fatalf("one year at 15%% on 10000 = %v, want 1500", got)
	}
	if got := InvestmentEarnings(10000, 0.15, 0); got != 0 {
		t.Fatalf("zero elapsed yields %v, want 0", got)
	}
}

func TestRegenEnergy(t *testing.T) {
	// A full recharge window from empty fills the bar exactly.
	if got := RegenEnergy(0, DefaultMaxEnergy, 6*time.Hour); !almostEqual(got, DefaultMaxEnergy) {
		t.Fatalf("full window from 0 = %v, want %v", got, DefaultMaxEnergy)
	}
	// Half the window from empty regenerates half the bar.
	if got := RegenEnergy(0, DefaultMaxEnergy, 3*time.Hour); !almostEqual(got, DefaultMaxEnergy/2) {
		t.Fatalf("half window from 0 = %v, want %v", got, DefaultMaxEnergy/2)
	}
	// Regen clamps at the cap, never overshoots.
	if got := RegenEnergy(499, DefaultMaxEnergy, 6*time.Hour); got != DefaultMaxEnergy {
		t.Fatalf("overshoot clamps to %v, got %v", DefaultMaxEnergy, got)
	}
	if got := RegenEnergy(500, DefaultMaxEnergy, time.Second); got != DefaultMaxEnergy {
		t.Fatalf("already full stays %v, got %v", DefaultMaxEnergy, got)
	}
}

func TestNextUpgradePrice(t *testing.T) {
	// The published escalation ladder for a 150-point upgrade.
	prices := []float64{150, 270, 486, 874}
	p := prices[0]
	for i := 1; i < len(prices); i++ {
		p = NextUpgradePrice(p)
		if p != prices[i] {
			t.Fatalf("step %d: price = %v, want %v", i, p, prices[i])
		}
	}
}
