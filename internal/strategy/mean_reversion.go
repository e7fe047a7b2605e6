package strategy

import (
	"fmt"

	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

func init() {
	Register(Variant{
		Name:     "MeanReversionRebound",
		Risk:     risk.Params{StopMult: 0.8, TargetMult: 1.5},
		Evaluate: meanReversionRebound,
	})
}

// meanReversionRebound fades RSI extremes in sideways or weakly trending
// symbols. Rebounds are short-lived, so the variant pairs with a tight
// ATR stop and takes small trades the trend variants would skip.
func meanReversionRebound(ctx Context) (types.Signal, bool) {
	if ctx.Index < 14 {
		return types.Signal{}, false
	}

	rsi, rok := indicator.RSI(ctx.Prices, 14)
	atr, aok := indicator.ATR(ctx.Candles, 14)
	sma20, sok := indicator.SMA(ctx.Prices, 20)
	if !rok || !aok || !sok || !ctx.Cooled() || len(ctx.Candles) == 0 {
		return types.Signal{}, false
	}

	candle := ctx.Candles[len(ctx.Candles)-1]

	// Oversold, still selling off below the mean: position for the rebound
	if rsi < 30 && candle.Close < candle.Open && candle.Close < sma20 {
		return types.Signal{
			Direction: types.Long,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("RSI %.2f oversold, potential rebound", rsi)},
		}, true
	}

	if rsi > 70 && candle.Close > candle.Open && candle.Close > sma20 {
		return types.Signal{
			Direction: types.Short,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("RSI %.2f overbought, potential reversal", rsi)},
		}, true
	}

	return types.Signal{}, false
}
