package strategy

import (
	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

func init() {
	Register(Variant{
		Name:     "TrendSpike",
		Risk:     risk.Params{StopMult: 1.5, TargetMult: 3.5},
		Evaluate: trendSpike,
	})
}

// trendSpike chases high-momentum volatility spikes: aligned trends on
// both timeframes, a strong fast-SMA slope relative to ATR, RSI at an
// extreme, ADX confirming trend strength, price breaking the Bollinger
// Band and a volume surge. It records the full rationale trail, since
// these entries are the ones worth auditing afterwards.
func trendSpike(ctx Context) (types.Signal, bool) {
	fast, fok := indicator.SMA(ctx.Prices, 9)
	slow, sok := indicator.SMA(ctx.Prices, 21)
	fastSlope, slok := indicator.SMASlope(ctx.Prices, 3)
	rsi, rok := indicator.RSI(ctx.Prices, 14)
	atr, aok := indicator.ATR(ctx.Candles, 14)
	bb, bok := indicator.BollingerBands(ctx.Prices, 20, 2)
	adx, dok := indicator.ADX(ctx.Candles, 14)
	lowerTrend, lok := indicator.TrendDirection(ctx.Candles)

	if !fok || !sok || !slok || !rok || !aok || !bok || !dok || !lok || !ctx.Cooled() {
		return types.Signal{}, false
	}
	higherTrend, hok := indicator.TrendDirection(ctx.HigherView())
	if !hok {
		higherTrend = lowerTrend
	}
	if len(ctx.Volumes) < 2 || len(ctx.Candles) < 2 {
		return types.Signal{}, false
	}

	volNow := ctx.Volumes[len(ctx.Volumes)-1]
	prevVol := ctx.Volumes[len(ctx.Volumes)-2]
	avgVol, vok := indicator.SMA(ctx.Volumes, 20)
	if !vok {
		return types.Signal{}, false
	}
	volSpike := volNow > prevVol*1.25 && volNow > avgVol

	// Only take strong slopes in the trend direction
	if lowerTrend == indicator.TrendUp && fastSlope <= atr*0.05 {
		return types.Signal{}, false
	}
	if lowerTrend == indicator.TrendDown && fastSlope >= -atr*0.05 {
		return types.Signal{}, false
	}

	candle := ctx.Candles[len(ctx.Candles)-1]
	prev := ctx.Candles[len(ctx.Candles)-2]

	var reasons []string
	if lowerTrend == indicator.TrendUp {
		reasons = append(reasons, "Lower TF trend up")
	} else {
		reasons = append(reasons, "Lower TF trend down")
	}
	if higherTrend == indicator.TrendUp {
		reasons = append(reasons, "Higher TF trend up")
	} else {
		reasons = append(reasons, "Higher TF trend down")
	}
	if fast > slow {
		reasons = append(reasons, "Fast SMA > Slow SMA")
	} else if fast < slow {
		reasons = append(reasons, "Fast SMA < Slow SMA")
	}
	if rsi > 66 {
		reasons = append(reasons, "RSI > 66")
	}
	if rsi < 34 {
		reasons = append(reasons, "RSI < 34")
	}
	if adx > 30 {
		reasons = append(reasons, "ADX > 30")
	}
	if candle.Close > bb.Upper {
		reasons = append(reasons, "Price > BB upper")
	}
	if candle.Close < bb.Lower {
		reasons = append(reasons, "Price < BB lower")
	}
	if volSpike {
		reasons = append(reasons, "Volume spike")
	}
	reasons = append(reasons, "Cooldown passed")

	if lowerTrend == indicator.TrendUp && higherTrend == indicator.TrendUp &&
		fast > slow && candle.Close > prev.High &&
		rsi > 66 && adx > 30 && candle.Close > bb.Upper && volSpike {
		stratLog.Debug("TrendSpike long", "index", ctx.Index, "rsi", rsi, "adx", adx)
		return types.Signal{Direction: types.Long, Entry: candle.Close, ATR: atr, Reasons: reasons}, true
	}

	if lowerTrend == indicator.TrendDown && higherTrend == indicator.TrendDown &&
		fast < slow && candle.Close < prev.Low &&
		rsi < 34 && adx > 30 && candle.Close < bb.Lower && volSpike {
		stratLog.Debug("TrendSpike short", "index", ctx.Index, "rsi", rsi, "adx", adx)
		return types.Signal{Direction: types.Short, Entry: candle.Close, ATR: atr, Reasons: reasons}, true
	}

	return types.Signal{}, false
}
