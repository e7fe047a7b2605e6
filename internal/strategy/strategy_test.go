package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadden91/stratlab/internal/types"
)

func TestRegistryContainsAllVariants(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{
		"BreakoutRange",
		"LowVolumeBreakout",
		"MeanReversionRebound",
		"MicroReversion",
		"MomentumPullback",
		"TrendSpike",
	}, names)

	for _, v := range All() {
		assert.Greater(t, v.Risk.StopMult, 0.0, "%s must own stop multiplier", v.Name)
		assert.Greater(t, v.Risk.TargetMult, 0.0, "%s must own target multiplier", v.Name)
		assert.NotNil(t, v.Evaluate, v.Name)
	}
}

func TestGetUnknownStrategy(t *testing.T) {
	_, err := Get("NoSuchStrategy")
	assert.Error(t, err)

	v, err := Get("TrendSpike")
	require.NoError(t, err)
	assert.Equal(t, "TrendSpike", v.Name)
}

func TestVariantsTolerateEmptyWindows(t *testing.T) {
	ctx := Context{Index: 0, LastTradeIndex: -999, CooldownBars: 8}
	for _, v := range All() {
		_, ok := v.Evaluate(ctx)
		assert.False(t, ok, "%s must treat missing data as no-signal", v.Name)
	}
}

// upPullbackBars builds 40 bars trending up with alternating +1/-0.5
// closes (fast SMA above slow SMA throughout, RSI hovering in the high
// 60s on up bars) and a single volume spike at the given index.
func upPullbackBars(spikeIndex int) []types.Bar {
	bars := make([]types.Bar, 40)
	close := 100.0
	for i := range bars {
		if i > 0 {
			if i%2 == 1 {
				close += 1
			} else {
				close -= 0.5
			}
		}
		vol := 1000.0
		if i == spikeIndex {
			vol = 2000.0
		}
		bars[i] = types.Bar{
			Open:   close - 0.1,
			High:   close + 0.5,
			Low:    close - 0.6,
			Close:  close,
			Volume: vol,
		}
	}
	return bars
}

func TestMomentumPullbackSingleSignalWithCooldown(t *testing.T) {
	const (
		spike    = 33
		warmup   = 25
		lookback = 30
		cooldown = 8
	)

	bars := upPullbackBars(spike)
	v, err := Get("MomentumPullback")
	require.NoError(t, err)

	lastTradeIndex := -999
	var signalIndexes []int

	for i := warmup; i < len(bars); i++ {
		window := bars[:i+1]
		if len(window) > lookback {
			window = window[len(window)-lookback:]
		}
		prices := make([]float64, len(window))
		volumes := make([]float64, len(window))
		for j, b := range window {
			prices[j] = b.Close
			volumes[j] = b.Volume
		}

		ctx := Context{
			Prices:         prices,
			Candles:        window,
			Volumes:        volumes,
			Index:          i,
			LastTradeIndex: lastTradeIndex,
			CooldownBars:   cooldown,
		}

		sig, ok := v.Evaluate(ctx)
		if ok {
			signalIndexes = append(signalIndexes, i)
			lastTradeIndex = i
			assert.Equal(t, types.Long, sig.Direction)
			assert.NotEmpty(t, sig.Reasons)
			assert.Greater(t, sig.ATR, 0.0)
		}
	}

	require.Equal(t, []int{spike}, signalIndexes,
		"expected exactly one long signal at the volume spike bar")
}

func TestMeanReversionReboundOversoldLong(t *testing.T) {
	// Steady selloff: closes below opens, below the 20 SMA, RSI deep
	bars := make([]types.Bar, 30)
	close := 200.0
	for i := range bars {
		close -= 2
		bars[i] = types.Bar{Open: close + 1.5, High: close + 2, Low: close - 0.5, Close: close, Volume: 1000}
	}
	prices := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Close
		volumes[i] = b.Volume
	}

	v, err := Get("MeanReversionRebound")
	require.NoError(t, err)

	sig, ok := v.Evaluate(Context{
		Prices: prices, Candles: bars, Volumes: volumes,
		Index: 29, LastTradeIndex: -999, CooldownBars: 8,
	})
	require.True(t, ok)
	assert.Equal(t, types.Long, sig.Direction)
}

func TestCooldownGateBlocksAllVariants(t *testing.T) {
	bars := upPullbackBars(33)
	prices := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Close
		volumes[i] = b.Volume
	}

	ctx := Context{
		Prices: prices, Candles: bars, Volumes: volumes,
		Index: 33, LastTradeIndex: 30, CooldownBars: 8,
	}
	for _, v := range All() {
		_, ok := v.Evaluate(ctx)
		assert.False(t, ok, "%s must honor the cooldown gate", v.Name)
	}
}
