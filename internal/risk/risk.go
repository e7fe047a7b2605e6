// Package risk converts a strategy signal into concrete stop/target levels
// and a position size bounded by both risk tolerance and available capital.
package risk

import (
	"math"

	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/types"
)

var riskLog = logging.New("risk")

const (
	// DefaultRiskFraction of the account balance risked per trade.
	DefaultRiskFraction = 0.15
	// DefaultMinRiskFloor keeps the risk budget meaningful on tiny balances.
	DefaultMinRiskFloor = 30.0
	// minStopDistance guards the size division against near-zero stops.
	minStopDistance = 0.0001
)

// Params are the ATR multipliers owned by each strategy variant. The
// variants disagree on these on purpose: a volatility spike needs more
// stop room than a micro scalp.
type Params struct {
	StopMult   float64
	TargetMult float64
}

// Levels holds the computed protective levels for a position.
type Levels struct {
	Stop   float64
	Target float64
}

// LevelsFor places the stop and target entry -/+ atr multiples away,
// with the signs flipped for shorts.
func (p Params) LevelsFor(entry float64, direction types.Direction, atr float64) Levels {
	stopDistance := atr * p.StopMult
	targetDistance := atr * p.TargetMult

	if direction == types.Long {
		return Levels{Stop: entry - stopDistance, Target: entry + targetDistance}
	}
	return Levels{Stop: entry + stopDistance, Target: entry - targetDistance}
}

// Size returns the position size for an entry given its stop level and the
// available balance. The size is capped by the risk budget AND by the
// capital actually available; enforcing only one bound allows unbounded
// leverage when the stop distance is very small.
func Size(entry, stop, balance float64) float64 {
	riskBudget := math.Max(balance*DefaultRiskFraction, DefaultMinRiskFloor)
	stopDistance := math.Max(math.Abs(entry-stop), minStopDistance)

	size := math.Min(riskBudget/stopDistance, balance/entry)
	riskLog.Debug("Sized position",
		"entry", entry, "stop", stop, "balance", balance,
		"riskBudget", riskBudget, "stopDistance", stopDistance, "size", size)
	return size
}
