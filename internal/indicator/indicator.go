// Package indicator provides pure sliding-window indicator computations.
// Every function returns an ok=false sentinel when the window is shorter
// than the required period, never a silent numeric default.
package indicator

import (
	"math"

	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/types"
)

var indLog = logging.New("indicator")

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

type Trend string

// Bands holds a Bollinger Band computation.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// SMA is the arithmetic mean of the last period elements.
func SMA(series []float64, period int) (float64, bool) {
	if len(series) < period || period <= 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// EMA seeds with the SMA of the first period elements, then rolls the
// standard smoothing constant k = 2/(period+1) forward over the rest.
func EMA(series []float64, period int) (float64, bool) {
	if len(series) < period || period <= 0 {
		return 0, false
	}
	k := 2.0 / float64(period+1)
	ema, _ := SMA(series[:period], period)
	for _, price := range series[period:] {
		ema = price*k + ema*(1-k)
	}
	return ema, true
}

// RSI computes the relative strength index with Wilder-style recursive
// smoothing beyond the seed window. Returns 100 when the average loss is
// exactly zero.
func RSI(series []float64, period int) (float64, bool) {
	if len(series) <= period || period <= 0 {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		diff := series[i] - series[i-1]
		if diff >= 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(series); i++ {
		diff := series[i] - series[i-1]
		avgGain = (avgGain*float64(period-1) + math.Max(diff, 0)) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + math.Max(-diff, 0)) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// TrueRange for one bar against the previous close.
func TrueRange(curr, prev types.Bar) float64 {
	return math.Max(curr.High-curr.Low,
		math.Max(math.Abs(curr.High-prev.Close), math.Abs(curr.Low-prev.Close)))
}

// ATR is the plain average of true range over the trailing period.
func ATR(candles []types.Bar, period int) (float64, bool) {
	if len(candles) < period+1 || period <= 0 {
		return 0, false
	}
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		trs = append(trs, TrueRange(candles[i], candles[i-1]))
	}
	return SMA(trs, period)
}

// ADX is a simplified single-pass directional movement index: smoothed
// +DM/-DM over true range, DX = |+DI - -DI| / (+DI + -DI) * 100.
// This is deliberately NOT the canonical double-smoothed ADX; strategy
// thresholds are tuned against this approximation.
func ADX(candles []types.Bar, period int) (float64, bool) {
	if len(candles) < period+1 || period <= 0 {
		return 0, false
	}

	plusDM := make([]float64, 0, len(candles)-1)
	minusDM := make([]float64, 0, len(candles)-1)
	trs := make([]float64, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM = append(plusDM, upMove)
		} else {
			plusDM = append(plusDM, 0)
		}
		if downMove > upMove && downMove > 0 {
			minusDM = append(minusDM, downMove)
		} else {
			minusDM = append(minusDM, 0)
		}
		trs = append(trs, TrueRange(candles[i], candles[i-1]))
	}

	smPlus, _ := SMA(plusDM, period)
	smMinus, _ := SMA(minusDM, period)
	smTR, _ := SMA(trs, period)

	if smTR == 0 {
		indLog.Warn("ADX window has zero true range, unavailable")
		return 0, false
	}

	plusDI := (smPlus / smTR) * 100
	minusDI := (smMinus / smTR) * 100
	if plusDI+minusDI == 0 {
		return 0, false
	}

	return (math.Abs(plusDI-minusDI) / (plusDI + minusDI)) * 100, true
}

// BollingerBands returns SMA +/- mult population standard deviations.
func BollingerBands(series []float64, period int, mult float64) (Bands, bool) {
	middle, ok := SMA(series, period)
	if !ok {
		return Bands{}, false
	}
	variance := 0.0
	for _, v := range series[len(series)-period:] {
		variance += (v - middle) * (v - middle)
	}
	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	return Bands{
		Upper:  middle + mult*stdDev,
		Middle: middle,
		Lower:  middle - mult*stdDev,
	}, true
}

// SMASlope sums the last period first-differences of the series, a cheap
// momentum proxy for the short moving average.
func SMASlope(series []float64, period int) (float64, bool) {
	if len(series) < period+1 || period <= 0 {
		return 0, false
	}
	slope := 0.0
	for i := len(series) - period; i < len(series); i++ {
		slope += series[i] - series[i-1]
	}
	return slope, true
}

// TrendDirection compares the fast (9) and slow (21) close SMAs.
func TrendDirection(candles []types.Bar) (Trend, bool) {
	if len(candles) < 21 {
		return "", false
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	fast, _ := SMA(closes, 9)
	slow, _ := SMA(closes, 21)
	if fast > slow {
		return TrendUp, true
	}
	return TrendDown, true
}
