package game

import "time"

// Every discrete action reconciles first, then applies its effect, so
// the returned snapshot is a single consistent as-of-now state.

// Tap spends one energy for pointsPerTap points. While a booster is
// active the tap value doubles and no energy is consumed. A tap with no
// energy and no booster is declined, leaving the reconciled snapshot
// otherwise untouched.
func Tap(s Snapshot, now time.Time) (Snapshot, bool) {
	out := Reconcile(s, now)

	active := out.BoosterActive(now)
	if !active && out.Energy < EnergyPerTap {
		return out, false
	}

	value := out.PointsPerTap
	if active {
		value *= BoosterTapMultiplier
	}
	out.Points += value
	if !active {
		out.Energy -= EnergyPerTap
	}
	return out, true
}

// BuyUpgrade spends points on one level of the named upgrade, feeding
// its increase into pointsPerTap or passiveIncome according to the
// upgrade's effect tag. An unaffordable or unknown purchase leaves the
// reconciled snapshot unchanged.
func BuyUpgrade(s Snapshot, upgradeID string, now time.Time) (Snapshot, error) {
	out := Reconcile(s, now)

	up, ok := out.Upgrades[upgradeID]
	if !ok {
		return out, ErrUnknownUpgrade
	}
	if out.Points < up.Price {
		return out, ErrInsufficientPoints
	}

	out.Points -= up.Price
	switch up.Effect {
	case EffectPassive:
		out.PassiveIncome += up.Increase
	default:
		out.PointsPerTap += up.Increase
	}
	up.Level++
	up.Price = NextUpgradePrice(up.Price)
	out.Upgrades[upgradeID] = up
	return out, nil
}

// BuyStock moves points into a yield-bearing position in a catalog
// stock, creating the position on first purchase. The position's
// lastUpdated moves to now so the fresh principal does not back-accrue.
func BuyStock(s Snapshot, stockID string, amount float64, now time.Time) (Snapshot, error) {
	out := Reconcile(s, now)

	if _, ok := StockByID(stockID); !ok {
		return out, ErrUnknownStock
	}
	if amount <= 0 {
		return out, ErrInvalidAmount
	}
	if out.Points < amount {
		return out, ErrInsufficientPoints
	}

	out.Points -= amount
	inv := out.Investments[stockID]
	inv.AmountInvested += amount
	inv.LastUpdated = now
	out.Investments[stockID] = inv
	return out, nil
}

// ApplyBooster starts (or restarts) the booster window. Payment gating
// happens upstream in the verifier; re-applying while active replaces
// the end time rather than stacking.
func ApplyBooster(s Snapshot, now time.Time, duration time.Duration) Snapshot {
	out := Reconcile(s, now)
	end := now.Add(duration)
	out.BoosterEndTime = &end
	out.Energy = out.MaxEnergy
	return out
}

// ClaimReferralBonus grants the one-time referral reward. The claimed
// flag, not the presence of a referral code, is what makes repeat loads
// idempotent.
func ClaimReferralBonus(s Snapshot) (Snapshot, bool) {
	if s.ReferralBonusClaimed {
		return s, false
	}
	out := s.Clone()
	out.Points += ReferralBonusPoints
	out.ReferralBonusClaimed = true
	return out, true
}
