package orchestrator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmadden91/stratlab/internal/backtest"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/store"
	"github.com/jmadden91/stratlab/internal/strategy"
	"github.com/jmadden91/stratlab/internal/types"
)

// risingBars climbs one point per bar with a fixed two-point range, so a
// long entry always runs into profit and a short always gets stopped.
func risingBars(n int) []types.Bar {
	base := time.Date(2025, 4, 10, 13, 30, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = types.Bar{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func stubVariant(name string, dir types.Direction) strategy.Variant {
	return strategy.Variant{
		Name: name,
		Risk: risk.Params{StopMult: 0.7, TargetMult: 1.1},
		Evaluate: func(ctx strategy.Context) (types.Signal, bool) {
			if len(ctx.Candles) < 16 {
				return types.Signal{}, false
			}
			return types.Signal{
				Direction: dir,
				Entry:     ctx.Prices[len(ctx.Prices)-1],
				Reasons:   []string{"always"},
			}, true
		},
	}
}

func neverVariant(name string) strategy.Variant {
	return strategy.Variant{
		Name: name,
		Risk: risk.Params{StopMult: 1, TargetMult: 2},
		Evaluate: func(strategy.Context) (types.Signal, bool) {
			return types.Signal{}, false
		},
	}
}

func newResults(t *testing.T) *store.ResultStore {
	t.Helper()
	s, err := store.OpenResults(filepath.Join(t.TempDir(), "results.json"))
	require.NoError(t, err)
	return s
}

func TestEvaluatePicksHighestAverageWinRate(t *testing.T) {
	variants := []strategy.Variant{
		stubVariant("AlwaysShort", types.Short),
		stubVariant("AlwaysLong", types.Long),
	}
	o := New(newResults(t), variants, backtest.DefaultConfig(), map[string]string{"NVDA": "NVIDIA Corp"})

	bars := map[types.Timeframe][]types.Bar{
		types.TF15Min: risingBars(40),
		types.TF1Hour: risingBars(40),
	}

	rec, ok := o.Evaluate("NVDA", bars)
	require.True(t, ok)
	assert.Equal(t, "AlwaysLong", rec.Strategy, "the long variant wins every trade on a rising series")
	assert.Equal(t, "NVDA", rec.Symbol)
	assert.Equal(t, "NVIDIA Corp", rec.Name)
	assert.Equal(t, 100.0, rec.WinRate)
	assert.Greater(t, rec.Trades, 1, "trades sum across both timeframes")
	assert.Equal(t, rec.Trades, rec.Wins+rec.Losses)
	assert.Equal(t, o.RunID(), rec.RunID)
}

func TestEvaluateSkipsEmptyTimeframes(t *testing.T) {
	o := New(newResults(t), []strategy.Variant{stubVariant("AlwaysLong", types.Long)}, backtest.DefaultConfig(), nil)

	rec, ok := o.Evaluate("AAPL", map[types.Timeframe][]types.Bar{
		types.TF15Min: risingBars(40),
	})

	require.True(t, ok)
	assert.Equal(t, 100.0, rec.WinRate, "a missing timeframe never drags the average")
}

func TestEvaluateZeroTradesReportsNotOK(t *testing.T) {
	o := New(newResults(t), []strategy.Variant{neverVariant("Quiet")}, backtest.DefaultConfig(), nil)

	_, ok := o.Evaluate("AAPL", map[types.Timeframe][]types.Bar{types.TF15Min: risingBars(40)})
	assert.False(t, ok)
}

func TestEvaluateToleratesEmptyRegistry(t *testing.T) {
	o := New(newResults(t), nil, backtest.DefaultConfig(), nil)

	_, ok := o.Evaluate("AAPL", map[types.Timeframe][]types.Bar{types.TF15Min: risingBars(40)})
	assert.False(t, ok)
}

func TestHandleSymbolQueuesRerunOnZeroTrades(t *testing.T) {
	results := newResults(t)
	o := New(results, []strategy.Variant{neverVariant("Quiet")}, backtest.DefaultConfig(), nil)

	require.NoError(t, o.HandleSymbol("TSLA", map[types.Timeframe][]types.Bar{types.TF15Min: risingBars(40)}))

	assert.Equal(t, []string{"TSLA"}, o.RerunQueue())
	assert.Empty(t, results.All(), "zero-trade symbols are not stored")
}

func TestHandleSymbolSkipsAlreadyScored(t *testing.T) {
	results := newResults(t)
	require.NoError(t, results.Upsert(store.ResultRecord{Symbol: "MSFT", Strategy: "Existing", WinRate: 42}))

	o := New(results, []strategy.Variant{stubVariant("AlwaysLong", types.Long)}, backtest.DefaultConfig(), nil)
	require.NoError(t, o.HandleSymbol("MSFT", map[types.Timeframe][]types.Bar{types.TF15Min: risingBars(40)}))

	all := results.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Existing", all[0].Strategy, "a stored result is never overwritten by a fresh pass")
}

func TestHandleRerunStoresResult(t *testing.T) {
	results := newResults(t)
	o := New(results, []strategy.Variant{stubVariant("AlwaysLong", types.Long)}, backtest.DefaultConfig(), nil)

	require.NoError(t, o.HandleRerun("AMD", map[types.Timeframe][]types.Bar{types.TF15Min: risingBars(40)}))

	require.Len(t, results.All(), 1)
	assert.Empty(t, o.RerunQueue(), "a rerun never queues again")
}
