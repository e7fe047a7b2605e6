package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmadden91/stratlab/internal/types"
)

func TestLevelsForLong(t *testing.T) {
	p := Params{StopMult: 0.7, TargetMult: 1.1}
	levels := p.LevelsFor(100, types.Long, 2)

	assert.InDelta(t, 98.6, levels.Stop, 1e-9)
	assert.InDelta(t, 102.2, levels.Target, 1e-9)
}

func TestLevelsForShort(t *testing.T) {
	p := Params{StopMult: 0.7, TargetMult: 1.1}
	levels := p.LevelsFor(100, types.Short, 2)

	assert.InDelta(t, 101.4, levels.Stop, 1e-9)
	assert.InDelta(t, 97.8, levels.Target, 1e-9)
}

func TestSizeCappedByRiskBudget(t *testing.T) {
	// balance 1000 -> risk budget 150; stop distance 20 -> 7.5 units,
	// under the capital cap of 1000/100 = 10 units
	size := Size(100, 80, 1000)
	assert.InDelta(t, 7.5, size, 1e-9, "risk budget / stop distance should bind")

	// Tighter stop distance 10 -> budget allows 15 units, but capital
	// only covers 10
	size = Size(100, 90, 1000)
	assert.InDelta(t, 10.0, size, 1e-9, "capital cap should bind")
}

func TestSizeCappedByAvailableCapital(t *testing.T) {
	// Tiny stop distance must not produce unbounded leverage
	size := Size(100, 99.9999, 1000)
	assert.LessOrEqual(t, size*100, 1000.0, "notional cost can never exceed balance")
}

func TestSizeUsesMinimumRiskFloor(t *testing.T) {
	// 15% of 100 is 15, below the 30 floor
	size := Size(10, 5, 100)
	// riskBudget=30, stopDistance=5 -> 6; capital cap 100/10=10
	assert.InDelta(t, 6.0, size, 1e-9)
}
