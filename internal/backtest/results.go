package backtest

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/jmadden91/stratlab/internal/account"
)

// Result is the per-run ledger for one (symbol, variant, timeframe)
// simulation. Trade records are append-only within a run.
type Result struct {
	Symbol         string
	Strategy       string
	InitialBalance float64
	FinalBalance   float64
	Exhausted      bool
	Trades         []account.Trade

	stats *Statistics
}

type Statistics struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // percent

	AvgDuration float64 // bars
	AvgRR       float64

	TotalPnL float64
}

// Stats aggregates the trade ledger. Cached after first call.
func (r *Result) Stats() *Statistics {
	if r.stats != nil {
		return r.stats
	}

	st := &Statistics{TotalTrades: len(r.Trades)}
	if len(r.Trades) == 0 {
		r.stats = st
		return st
	}

	durations := make([]float64, len(r.Trades))
	rrs := make([]float64, len(r.Trades))
	for i, trade := range r.Trades {
		if trade.Outcome() == account.Win {
			st.Wins++
		} else {
			st.Losses++
		}
		durations[i] = float64(trade.Duration)
		rrs[i] = trade.RiskReward
		st.TotalPnL += trade.PnL
	}

	st.WinRate = float64(st.Wins) / float64(st.TotalTrades) * 100
	st.AvgDuration = stat.Mean(durations, nil)
	st.AvgRR = stat.Mean(rrs, nil)

	r.stats = st
	return st
}

func (s *Statistics) String() string {
	return fmt.Sprintf("trades=%d wins=%d losses=%d winRate=%.2f%% avgDuration=%.2f avgRR=%.2f pnl=%.2f",
		s.TotalTrades, s.Wins, s.Losses, s.WinRate, s.AvgDuration, s.AvgRR, s.TotalPnL)
}
