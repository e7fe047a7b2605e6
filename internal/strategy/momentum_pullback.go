package strategy

import (
	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

func init() {
	Register(Variant{
		Name:     "MomentumPullback",
		Risk:     risk.Params{StopMult: 1.0, TargetMult: 2.5},
		Evaluate: momentumPullback,
	})
}

// momentumPullback enters with the trend after a pullback recovers:
// both timeframes aligned, price on the trend side of the slow SMA,
// momentum returning against the previous close, RSI in the trend
// confirmation zone and a volume spike backing the move.
func momentumPullback(ctx Context) (types.Signal, bool) {
	lowerTrend, lok := indicator.TrendDirection(ctx.Candles)
	if !lok {
		return types.Signal{}, false
	}
	// Until enough higher-timeframe bars exist, assume alignment with the
	// lower trend rather than suppressing every early signal.
	higherTrend, hok := indicator.TrendDirection(ctx.HigherView())
	if !hok {
		higherTrend = lowerTrend
	}
	if lowerTrend != higherTrend {
		return types.Signal{}, false
	}

	slow, sok := indicator.SMA(ctx.Prices, 21)
	rsi, rok := indicator.RSI(ctx.Prices, 14)
	atr, aok := indicator.ATR(ctx.Candles, 14)
	if !sok || !rok || !aok || !ctx.Cooled() {
		return types.Signal{}, false
	}

	avgVol, vok := indicator.SMA(ctx.Volumes, 20)
	if !vok || len(ctx.Volumes) == 0 || len(ctx.Candles) < 2 {
		return types.Signal{}, false
	}
	volNow := ctx.Volumes[len(ctx.Volumes)-1]
	volSpike := volNow > avgVol*1.2

	candle := ctx.Candles[len(ctx.Candles)-1]
	prev := ctx.Candles[len(ctx.Candles)-2]

	if lowerTrend == indicator.TrendUp &&
		candle.Close > slow &&
		candle.Close > prev.Close &&
		rsi > 45 && rsi < 70 &&
		volSpike {
		stratLog.Debug("MomentumPullback long", "index", ctx.Index, "rsi", rsi)
		return types.Signal{
			Direction: types.Long,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{"Uptrend pullback recovered", "RSI neutral", "Volume spike"},
		}, true
	}

	if lowerTrend == indicator.TrendDown &&
		candle.Close < slow &&
		candle.Close < prev.Close &&
		rsi > 30 && rsi < 55 &&
		volSpike {
		stratLog.Debug("MomentumPullback short", "index", ctx.Index, "rsi", rsi)
		return types.Signal{
			Direction: types.Short,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{"Downtrend pullback recovered", "RSI neutral", "Volume spike"},
		}, true
	}

	return types.Signal{}, false
}
