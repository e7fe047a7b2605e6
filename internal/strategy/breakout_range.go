package strategy

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

func init() {
	Register(Variant{
		Name:     "BreakoutRange",
		Risk:     risk.Params{StopMult: 1.2, TargetMult: 3.0},
		Evaluate: breakoutRange,
	})
}

// breakoutRange captures breakouts from recent consolidation: a close
// outside the trailing 20-bar range, validated by a volume spike. It
// catches stocks that never produce clean momentum entries because they
// sit in tight ranges.
func breakoutRange(ctx Context) (types.Signal, bool) {
	const (
		rangeLookback = 20
		volMult       = 1.3
	)

	if ctx.Index < rangeLookback || len(ctx.Candles) < rangeLookback+1 {
		return types.Signal{}, false
	}

	// Range over the bars preceding the current one, so the current bar
	// can actually close outside it.
	recent := ctx.Candles[len(ctx.Candles)-rangeLookback-1 : len(ctx.Candles)-1]
	rangeHigh := lo.Max(lo.Map(recent, func(b types.Bar, _ int) float64 { return b.High }))
	rangeLow := lo.Min(lo.Map(recent, func(b types.Bar, _ int) float64 { return b.Low }))

	avgVol, vok := indicator.SMA(ctx.Volumes, rangeLookback)
	atr, aok := indicator.ATR(ctx.Candles, 14)
	if !vok || !aok || len(ctx.Volumes) == 0 {
		return types.Signal{}, false
	}
	volNow := ctx.Volumes[len(ctx.Volumes)-1]
	if !ctx.Cooled() || volNow <= avgVol*volMult {
		return types.Signal{}, false
	}

	candle := ctx.Candles[len(ctx.Candles)-1]

	if candle.Close > rangeHigh {
		return types.Signal{
			Direction: types.Long,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("Breakout above %.4f", rangeHigh), "Volume spike"},
		}, true
	}
	if candle.Close < rangeLow {
		return types.Signal{
			Direction: types.Short,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("Breakdown below %.4f", rangeLow), "Volume spike"},
		}, true
	}

	return types.Signal{}, false
}
