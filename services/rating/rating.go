// Package rating computes tier-point deltas for multiplayer game results.
// Everything here is pure: state loading and persistence belong to the
// callers (game services and the decay job).
package rating

import (
	"math"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
)

// Transition reports whether applying a delta crossed a tier boundary
type Transition string

const (
	TransitionNone     Transition = ""
	TransitionPromoted Transition = "PROMOTED"
	TransitionDemoted  Transition = "DEMOTED"
)

// BasePointDelta returns the table-driven point change for finishing at
// rank in a bracket of totalPlayers.
//
//	| players | 1st  | 2nd | 3rd | rest |
//	| 2       | +100 | 0   | -   | -    |
//	| 3-4     | +120 | +40 | 0   | -20  |
//	| 5-6     | +150 | +60 | +20 | -10  |
//	| 7+      | +180 | +80 | +30 | 0    |
func BasePointDelta(totalPlayers, rank int) int {
	if totalPlayers < 2 {
		return 0
	}

	switch {
	case totalPlayers == 2:
		if rank == 1 {
			return 100
		}
		return 0
	case totalPlayers <= 4:
		switch rank {
		case 1:
			return 120
		case 2:
			return 40
		case 3:
			return 0
		default:
			return -20
		}
	case totalPlayers <= 6:
		switch rank {
		case 1:
			return 150
		case 2:
			return 60
		case 3:
			return 20
		default:
			return -10
		}
	default:
		switch rank {
		case 1:
			return 180
		case 2:
			return 80
		case 3:
			return 30
		default:
			return 0
		}
	}
}

// actualScore maps a finishing rank to the score used against the expected
// score from the rating gap.
func actualScore(rank int) float64 {
	switch rank {
	case 1:
		return 1.0
	case 2:
		return 0.75
	case 3:
		return 0.5
	default:
		return 0.25
	}
}

// OpponentAdjustedDelta scales BasePointDelta by how the result compares to
// the expectation from the rating gap. Beating stronger opponents earns up
// to 1.5x, stomping weaker ones as little as 0.5x.
func OpponentAdjustedDelta(tier model.Tier, points int, avgOpponentRating float64, totalPlayers, rank int) int {
	base := BasePointDelta(totalPlayers, rank)
	if base == 0 {
		return 0
	}

	myRating := tier.Rating(points)
	expected := 1.0 / (1.0 + math.Pow(10, -(myRating-avgOpponentRating)/400.0))

	multiplier := 1.0 + (actualScore(rank) - expected)
	if multiplier < 0.5 {
		multiplier = 0.5
	}
	if multiplier > 1.5 {
		multiplier = 1.5
	}

	return int(math.Round(float64(base) * multiplier))
}

// ApplyDelta moves points by delta, promoting on overflow (carrying the
// remainder) and demoting on underflow (borrowing from the tier below).
// The ceiling tier clamps at MaxTierPoints and the floor tier at 0.
func ApplyDelta(tier model.Tier, points, delta int) (model.Tier, int, Transition) {
	newPoints := points + delta
	transition := TransitionNone

	for newPoints >= model.MaxTierPoints && tier.CanPromote() {
		newPoints -= model.MaxTierPoints
		tier = tier.Next()
		transition = TransitionPromoted
	}

	for newPoints < 0 && tier.CanDemote() {
		tier = tier.Previous()
		newPoints += model.MaxTierPoints
		transition = TransitionDemoted
	}

	if newPoints < 0 {
		newPoints = 0
	}
	if !tier.CanPromote() && newPoints > model.MaxTierPoints {
		newPoints = model.MaxTierPoints
	}

	return tier, newPoints, transition
}

// ApplyDecay removes amount points via the ApplyDelta underflow path.
// Callers skip floor-tier zero-point subjects entirely; this function only
// guards against a non-positive amount.
func ApplyDecay(tier model.Tier, points, amount int) (model.Tier, int, Transition) {
	if amount <= 0 {
		return tier, points, TransitionNone
	}
	return ApplyDelta(tier, points, -amount)
}
