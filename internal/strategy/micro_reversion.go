package strategy

import (
	"fmt"

	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

func init() {
	Register(Variant{
		Name:     "MicroReversion",
		Risk:     risk.Params{StopMult: 0.6, TargetMult: 1.0},
		Evaluate: microReversion,
	})
}

// microReversion scalps small bounces in choppy conditions using a
// 5-period RSI extreme confirmed against the 5-bar SMA.
func microReversion(ctx Context) (types.Signal, bool) {
	if ctx.Index < 5 {
		return types.Signal{}, false
	}

	rsi, rok := indicator.RSI(ctx.Prices, 5)
	sma5, sok := indicator.SMA(ctx.Prices, 5)
	atr, aok := indicator.ATR(ctx.Candles, 14)
	if !ctx.Cooled() || !rok || !sok || !aok || len(ctx.Candles) == 0 {
		return types.Signal{}, false
	}

	candle := ctx.Candles[len(ctx.Candles)-1]

	if rsi < 35 && candle.Close < sma5 {
		return types.Signal{
			Direction: types.Long,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("RSI %.2f oversold, potential micro-bounce", rsi)},
		}, true
	}

	if rsi > 65 && candle.Close > sma5 {
		return types.Signal{
			Direction: types.Short,
			Entry:     candle.Close,
			ATR:       atr,
			Reasons:   []string{fmt.Sprintf("RSI %.2f overbought, potential micro-pullback", rsi)},
		}, true
	}

	return types.Signal{}, false
}
