package game

import "time"

// EffectKind says which derived field an upgrade feeds. Upgrades carry
// the tag explicitly instead of being matched by id.
type EffectKind string

const (
	EffectTap     EffectKind = "tap"
	EffectPassive EffectKind = "passive"
)

// Upgrade is a purchasable permanent modifier. Price escalates by
// PriceGrowthFactor on every purchase.
type Upgrade struct {
	ID       string     `json:"id"`
	Effect   EffectKind `json:"effect"`
	Level    int        `json:"level"`
	Price    float64    `json:"price"`
	Increase float64    `json:"increase"`
}

// Stock is static catalog data shared by every player.
type Stock struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	APY   float64 `json:"apy"`
	Price float64 `json:"price"`
}

// Investment is one player's position in a catalog stock. Yield accrues
// continuously from LastUpdated; the amount only ever grows.
type Investment struct {
	AmountInvested float64   `json:"amountInvested"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// Snapshot is the full persisted state of one player. The JSON field
// names are the durable storage contract; every backend must round-trip
// them losslessly.
type Snapshot struct {
	Points               float64               `json:"points"`
	Energy               float64               `json:"energy"`
	MaxEnergy            float64               `json:"maxEnergy"`
	PointsPerTap         float64               `json:"pointsPerTap"`
	PassiveIncome        float64               `json:"passiveIncome"` // points per minute
	Upgrades             map[string]Upgrade    `json:"upgrades"`
	Investments          map[string]Investment `json:"investments"`
	LastTick             time.Time             `json:"lastTick"`
	BoosterEndTime       *time.Time            `json:"boosterEndTime,omitempty"`
	ReferralBonusClaimed bool                  `json:"referralBonusClaimed"`
}

// Purchase is one verified booster payment, kept for the player's
// transaction history.
type Purchase struct {
	ID             string    `json:"id"`
	PlayerID       string    `json:"player_id"`
	Kind           string    `json:"kind"`
	AmountNanoton  int64     `json:"amount_nanoton"`
	BoosterEndTime time.Time `json:"booster_end_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeaderboardRow ranks a player by total points.
type LeaderboardRow struct {
	Rank     int64   `json:"rank"`
	PlayerID string  `json:"player_id"`
	Points   float64 `json:"points"`
}

// TapResult reports whether a tap was accepted. A declined tap (no
// energy, no booster) is a normal outcome, not an error.
type TapResult struct {
	Accepted bool     `json:"accepted"`
	Snapshot Snapshot `json:"data"`
}

// Stocks is the immutable process-wide catalog. Investment entries whose
// id is missing here are ignored by reconciliation, never purged.
var Stocks = []Stock{
	{ID: "secco-tech", Name: "SECCO Innovations", APY: 0.15, Price: 10_000},
	{ID: "ton-ventures", Name: "TON Ventures", APY: 0.25, Price: 50_000},
	{ID: "global-net", Name: "GlobalNet", APY: 0.10, Price: 5_000},
}

// StockByID looks up catalog reference data.
func StockByID(id string) (Stock, bool) {
	for _, s := range Stocks {
		if s.ID == id {
			return s, true
		}
	}
	return Stock{}, false
}

// DefaultSnapshot is the fixed state every new player starts from.
func DefaultSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Points:        0,
		Energy:        DefaultMaxEnergy,
		MaxEnergy:     DefaultMaxEnergy,
		PointsPerTap:  DefaultPointsPerTap,
		PassiveIncome: 0,
		Upgrades: map[string]Upgrade{
			"powerTap":  {ID: "powerTap", Effect: EffectTap, Level: 1, Price: 150, Increase: 0.5},
			"megaClick": {ID: "megaClick", Effect: EffectTap, Level: 1, Price: 500, Increase: 1},
			"basicAuto": {ID: "basicAuto", Effect: EffectPassive, Level: 0, Price: 1_000, Increase: 10},
			"turboAuto": {ID: "turboAuto", Effect: EffectPassive, Level: 0, Price: 5_000, Increase: 50},
		},
		Investments: map[string]Investment{},
		LastTick:    now,
	}
}

// Clone deep-copies the snapshot so pure transforms never alias the
// caller's maps.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Upgrades = make(map[string]Upgrade, len(s.Upgrades))
	for id, u := range s.Upgrades {
		out.Upgrades[id] = u
	}
	out.Investments = make(map[string]Investment, len(s.Investments))
	for id, inv := range s.Investments {
		out.Investments[id] = inv
	}
	if s.BoosterEndTime != nil {
		end := *s.BoosterEndTime
		out.BoosterEndTime = &end
	}
	return out
}

// BoosterActive reports whether a purchased booster covers the instant now.
func (s Snapshot) BoosterActive(now time.Time) bool {
	return s.BoosterEndTime != nil && now.Before(*s.BoosterEndTime)
}
