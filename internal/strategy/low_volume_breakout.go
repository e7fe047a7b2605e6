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
		Name:     "LowVolumeBreakout",
		Risk:     risk.Params{StopMult: 1.0, TargetMult: 2.2},
		Evaluate: lowVolumeBreakout,
	})
}

// lowVolumeBreakout targets thinly traded symbols (ETFs, warrants,
// rights) that rarely move: a tight 10-bar range, an exit from it, and
// only a slight relative volume uptick required.
func lowVolumeBreakout(ctx Context) (types.Signal, bool) {
	const rangeLookback = 10

	if ctx.Index < rangeLookback || len(ctx.Candles) < rangeLookback+1 {
		return types.Signal{}, false
	}

	recent := ctx.Candles[len(ctx.Candles)-rangeLookback-1 : len(ctx.Candles)-1]
	rangeHigh := lo.Max(lo.Map(recent, func(b types.Bar, _ int) float64 { return b.High }))
	rangeLow := lo.Min(lo.Map(recent, func(b types.Bar, _ int) float64 { return b.Low }))

	atr, aok := indicator.ATR(ctx.Candles, 14)
	if !aok || len(ctx.Volumes) == 0 {
		return types.Signal{}, false
	}

	avgVol, vok := indicator.SMA(ctx.Volumes, rangeLookback)
	if !vok || avgVol == 0 {
		avgVol = 1 // thin symbols can report zero volume bars
	}
	volNow := ctx.Volumes[len(ctx.Volumes)-1]
	if !ctx.Cooled() || volNow <= avgVol*1.05 {
		return types.Signal{}, false
	}

	candle := ctx.Candles[len(ctx.Candles)-1]

	if candle.Close > rangeHigh {
		return types.Signal{
			Direction: types.Long,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("Breakout above %.4f in low-volume symbol", rangeHigh)},
		}, true
	}
	if candle.Close < rangeLow {
		return types.Signal{
			Direction: types.Short,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("Breakdown below %.4f in low-volume symbol", rangeLow)},
		}, true
	}

	return types.Signal{}, false
}
