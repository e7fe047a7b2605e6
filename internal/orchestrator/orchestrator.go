// Package orchestrator evaluates every registered strategy variant over a
// symbol's bars and retains only the best-performing one per symbol.
package orchestrator

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/jmadden91/stratlab/internal/backtest"
	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/store"
	"github.com/jmadden91/stratlab/internal/strategy"
	"github.com/jmadden91/stratlab/internal/types"
)

var orchLog = logging.New("sim")

// baseTimeframes are the timeframes a variant is scored on; higherOf maps
// each to the timeframe supplying the higher-trend context.
var (
	baseTimeframes = []types.Timeframe{types.TF15Min, types.TF1Hour}
	higherOf       = map[types.Timeframe]types.Timeframe{
		types.TF15Min: types.TF1Hour,
		types.TF1Hour: types.TF1Day,
	}
)

// Orchestrator scores variants per symbol and upserts the winner into the
// result store. Symbols where no variant trades at all are queued for a
// single rerun over a longer history.
type Orchestrator struct {
	results  *store.ResultStore
	variants []strategy.Variant
	cfg      backtest.Config
	names    map[string]string
	runID    string

	mu    sync.Mutex
	rerun []string
}

// New builds an orchestrator. names maps symbols to display names from
// the universe file and may be nil.
func New(results *store.ResultStore, variants []strategy.Variant, cfg backtest.Config, names map[string]string) *Orchestrator {
	return &Orchestrator{
		results:  results,
		variants: variants,
		cfg:      cfg,
		names:    names,
		runID:    uuid.NewString(),
	}
}

func (o *Orchestrator) RunID() string { return o.runID }

// RerunQueue returns the symbols that produced zero trades across every
// variant and timeframe. They get one more pass over a year of history.
func (o *Orchestrator) RerunQueue() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.rerun))
	copy(out, o.rerun)
	return out
}

// HandleSymbol is the acquisition pipeline's per-symbol callback. A
// symbol with a stored result is left untouched; a zero-trade symbol is
// queued for rerun instead of being stored.
func (o *Orchestrator) HandleSymbol(symbol string, bars map[types.Timeframe][]types.Bar) error {
	if o.results.Has(symbol) {
		orchLog.Debug("Symbol already scored, skipping", "symbol", symbol)
		return nil
	}

	rec, ok := o.Evaluate(symbol, bars)
	if !ok {
		orchLog.Info("No trades for symbol, queueing rerun", "symbol", symbol)
		o.mu.Lock()
		o.rerun = append(o.rerun, symbol)
		o.mu.Unlock()
		return nil
	}

	return o.results.Upsert(rec)
}

// HandleRerun is the second-pass callback: it stores whatever the longer
// history produces and never queues again.
func (o *Orchestrator) HandleRerun(symbol string, bars map[types.Timeframe][]types.Bar) error {
	rec, ok := o.Evaluate(symbol, bars)
	if !ok {
		orchLog.Info("Still no trades after rerun", "symbol", symbol)
		return nil
	}
	return o.results.Upsert(rec)
}

// variantScore aggregates one variant's runs across the base timeframes.
type variantScore struct {
	variant   strategy.Variant
	winRates  []float64
	durations []float64
	rrs       []float64
	trades    int
	wins      int
	losses    int
}

func (s variantScore) avgWinRate() float64 {
	return stat.Mean(s.winRates, nil)
}

// Evaluate runs every variant over every base timeframe and picks the one
// with the highest win rate averaged across timeframes. Timeframes with
// no trades do not enter the average. ok is false when nothing traded.
func (o *Orchestrator) Evaluate(symbol string, bars map[types.Timeframe][]types.Bar) (store.ResultRecord, bool) {
	if len(o.variants) == 0 {
		orchLog.Warn("No strategy variants registered", "symbol", symbol)
		return store.ResultRecord{}, false
	}

	var scores []variantScore
	for _, v := range o.variants {
		s := variantScore{variant: v}

		for _, tf := range baseTimeframes {
			base := bars[tf]
			if len(base) == 0 {
				continue
			}

			res := backtest.NewEngine(base, bars[higherOf[tf]], o.cfg).Run(v)
			st := res.Stats()
			if st.TotalTrades == 0 {
				continue
			}

			s.winRates = append(s.winRates, st.WinRate)
			s.durations = append(s.durations, st.AvgDuration)
			s.rrs = append(s.rrs, st.AvgRR)
			s.trades += st.TotalTrades
			s.wins += st.Wins
			s.losses += st.Losses

			orchLog.Debug("Variant scored",
				"symbol", symbol, "strategy", v.Name, "timeframe", tf, "stats", st)
		}

		if s.trades > 0 {
			scores = append(scores, s)
		}
	}

	if len(scores) == 0 {
		return store.ResultRecord{}, false
	}

	best := lo.MaxBy(scores, func(a, b variantScore) bool {
		return a.avgWinRate() > b.avgWinRate()
	})

	rec := store.ResultRecord{
		Symbol:      symbol,
		Name:        o.names[symbol],
		Strategy:    best.variant.Name,
		WinRate:     round2(best.avgWinRate()),
		Trades:      best.trades,
		Wins:        best.wins,
		Losses:      best.losses,
		AvgDuration: round2(stat.Mean(best.durations, nil)),
		AvgRR:       round2(stat.Mean(best.rrs, nil)),
		RunID:       o.runID,
	}

	orchLog.Info("Best variant selected",
		"symbol", symbol, "strategy", rec.Strategy, "winRate", rec.WinRate, "trades", rec.Trades)
	return rec, true
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
