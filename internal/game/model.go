package game

import (
	"errors"
	"math"
	"time"
)

const (
	DefaultMaxEnergy    = float64(500)
	DefaultPointsPerTap = float64(0.1)

	// FullRechargeSeconds is how long an empty energy bar takes to refill.
	FullRechargeSeconds = float64(6 * 60 * 60)

	SecondsPerYear = float64(365 * 24 * 3600)

	PriceGrowthFactor    = 1.8
	BoosterTapMultiplier = 2.0
	EnergyPerTap         = float64(1)

	BoosterDurationMinutes = 30
	ReferralBonusPoints    = float64(10_000)
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrUnknownUpgrade     = errors.New("unknown upgrade")
	ErrUnknownStock       = errors.New("unknown stock")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrMalformedSnapshot  = errors.New("snapshot missing required fields")
)

// PassiveEarnings converts a per-minute passive income rate into points
// accrued over dt.
func PassiveEarnings(ratePerMinute float64, dt time.Duration) float64 {
	if ratePerMinute <= 0 || dt <= 0 {
		return 0
	}
	return dt.Seconds() * ratePerMinute / 60
}

// InvestmentEarnings accrues yield on a single position over dt at a
// continuous per-second fraction of the annual rate.
func InvestmentEarnings(amountInvested, apy float64, dt time.Duration) float64 {
	if amountInvested <= 0 || dt <= 0 {
		return 0
	}
	return amountInvested * (apy / SecondsPerYear) * dt.Seconds()
}

// RegenEnergy returns the energy level after dt of regeneration, clamped
// to [0, maxEnergy]. A full bar takes FullRechargeSeconds from empty.
func RegenEnergy(energy, maxEnergy float64, dt time.Duration) float64 {
	if dt < 0 {
		dt = 0
	}
	next := energy + (dt.Seconds()/FullRechargeSeconds)*maxEnergy
	if next > maxEnergy {
		return maxEnergy
	}
	if next < 0 {
		return 0
	}
	return next
}

// NextUpgradePrice escalates an upgrade's price after a purchase.
func NextUpgradePrice(price float64) float64 {
	return math.Floor(price * PriceGrowthFactor)
}
