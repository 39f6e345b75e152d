package model

// Tier is the ordered competitive ladder for multiplayer games. Points move
// within [0, MaxTierPoints); overflow promotes and underflow demotes, with
// Bronze as the floor and Challenger as the ceiling.
type Tier string

const (
	TierBronze     Tier = "BRONZE"
	TierSilver     Tier = "SILVER"
	TierGold       Tier = "GOLD"
	TierPlatinum   Tier = "PLATINUM"
	TierDiamond    Tier = "DIAMOND"
	TierMaster     Tier = "MASTER"
	TierChallenger Tier = "CHALLENGER"
)

// MaxTierPoints is the point capacity of a single tier.
const MaxTierPoints = 100

var tierOrder = []Tier{
	TierBronze,
	TierSilver,
	TierGold,
	TierPlatinum,
	TierDiamond,
	TierMaster,
	TierChallenger,
}

// Order returns the tier's position on the ladder, Bronze being 0.
// Unknown values map to Bronze.
func (t Tier) Order() int {
	for i, tier := range tierOrder {
		if tier == t {
			return i
		}
	}
	return 0
}

// CanPromote reports whether a higher tier exists.
func (t Tier) CanPromote() bool {
	return t != TierChallenger
}

// CanDemote reports whether a lower tier exists.
func (t Tier) CanDemote() bool {
	return t != TierBronze
}

// Next returns the tier above, or the receiver at the ceiling.
func (t Tier) Next() Tier {
	if !t.CanPromote() {
		return t
	}
	return tierOrder[t.Order()+1]
}

// Previous returns the tier below, or the receiver at the floor.
func (t Tier) Previous() Tier {
	if !t.CanDemote() {
		return t
	}
	return tierOrder[t.Order()-1]
}

// Rating converts tier plus points into a single linear scale for
// cross-tier comparison.
func (t Tier) Rating(points int) float64 {
	return float64(t.Order()*MaxTierPoints + points)
}
