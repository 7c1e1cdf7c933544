package game

import "time"

// Reconcile advances a snapshot's time-dependent fields so they are
// valid as of now. It is pure: the input snapshot is never mutated.
// Calling it twice with the same now is a no-op because the elapsed
// interval is computed from lastTick and clamped at zero; a stale clock
// can therefore never subtract points or energy.
func Reconcile(s Snapshot, now time.Time) Snapshot {
	out := s.Clone()

	// Clock skew: a now earlier than lastTick would rewind lastTick and
	// every position's lastUpdated. Pin it so the pass is a no-op.
	if now.Before(out.LastTick) {
		now = out.LastTick
	}
	dt := now.Sub(out.LastTick)

	active := out.BoosterActive(now)

	// Energy reads as full for the whole booster window; otherwise it
	// regenerates against the fixed recharge window, clamped at max.
	if active {
		out.Energy = out.MaxEnergy
	} else {
		out.Energy = RegenEnergy(out.Energy, out.MaxEnergy, dt)
	}

	out.Points += PassiveEarnings(out.PassiveIncome, dt)

	// Each position accrues from its own lastUpdated, not from the
	// global lastTick: a fresh buy must not re-earn the whole interval.
	for id, inv := range out.Investments {
		stock, ok := StockByID(id)
		if !ok {
			continue
		}
		if inv.LastUpdated.After(now) {
			continue
		}
		out.Points += InvestmentEarnings(inv.AmountInvested, stock.APY, now.Sub(inv.LastUpdated))
		inv.LastUpdated = now
		out.Investments[id] = inv
	}

	if out.BoosterEndTime != nil && !active {
		out.BoosterEndTime = nil
	}

	out.LastTick = now
	return out
}
