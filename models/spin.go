package models

// SpinOutcome classifies a single roulette draw
type SpinOutcome string

const (
	SpinOutcomeLoss    SpinOutcome = "LOSS"
	SpinOutcomeNeutral SpinOutcome = "NEUTRAL"
	SpinOutcomeWin     SpinOutcome = "WIN"
	SpinOutcomeBonus   SpinOutcome = "BONUS"
)

// SpinState represents where a spin is in its lifecycle
type SpinState string

const (
	SpinStateSpinning      SpinState = "spinning"
	SpinStateAwaitingWall  SpinState = "awaiting_wall_choice"
	SpinStateResolved      SpinState = "resolved"
)

// WallMultipliers is the multiplier set hidden behind the three walls of a
// bonus round. It is assigned to the walls by a fresh random permutation per
// round.
var WallMultipliers = [3]int64{2, 5, 20}

// ClassifyDraw maps a uniform draw in [0, 100) onto an outcome. Accounts in
// lucky mode use a different probability table.
func ClassifyDraw(draw float64, lucky bool) SpinOutcome {
	if lucky {
		switch {
		case draw < 20:
			return SpinOutcomeBonus
		case draw < 60:
			return SpinOutcomeWin
		default:
			return SpinOutcomeNeutral
		}
	}
	switch {
	case draw < 80:
		return SpinOutcomeLoss
	case draw < 98:
		return SpinOutcomeNeutral
	case draw < 99:
		return SpinOutcomeWin
	default:
		return SpinOutcomeBonus
	}
}

// ShuffleWalls assigns the wall multipliers to the three walls according to
// a permutation of [0, 3). Every multiplier appears behind exactly one wall.
func ShuffleWalls(perm []int) [3]int64 {
	var walls [3]int64
	for i, p := range perm {
		walls[i] = WallMultipliers[p]
	}
	return walls
}

// SpinDelta returns the immediate balance delta for a non-bonus outcome.
// BONUS defers its delta to the wall choice step.
func SpinDelta(outcome SpinOutcome, stake int64) int64 {
	switch outcome {
	case SpinOutcomeLoss:
		return -stake
	case SpinOutcomeWin:
		return stake
	default:
		return 0
	}
}

// SpinResult represents the outcome of a spin operation
type SpinResult struct {
	Outcome    SpinOutcome
	Delta      int64
	NewBalance int64
	// PendingBonus is set when the spin landed on BONUS and the caller must
	// complete the wall choice step before the spin resolves
	PendingBonus bool
}

// WallChoiceResult represents the outcome of a completed bonus round
type WallChoiceResult struct {
	Wall       int
	Multiplier int64
	Delta      int64
	NewBalance int64
}
