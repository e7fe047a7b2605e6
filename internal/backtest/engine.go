// Package backtest replays a historical bar series through a strategy
// variant, simulating the full trade lifecycle: entry sizing, stop/target/
// timeout exits, cooldown enforcement and the running account balance.
package backtest

import (
	"math"

	"github.com/jmadden91/stratlab/internal/account"
	"github.com/jmadden91/stratlab/internal/indicator"
	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/strategy"
	"github.com/jmadden91/stratlab/internal/types"
)

var simLog = logging.New("sim")

// Config holds the simulation constants. The defaults are the values the
// strategy thresholds were tuned against; change them together or not at
// all.
type Config struct {
	InitialBalance float64
	Lookback       int     // trailing window length fed to evaluators
	CooldownBars   int     // minimum bar gap between entries
	MaxHold        int     // forced-exit horizon in bars
	LockFraction   float64 // partial-profit lock threshold, in ATR units
	ATRPeriod      int
}

func DefaultConfig() Config {
	return Config{
		InitialBalance: 100,
		Lookback:       30,
		CooldownBars:   8,
		MaxHold:        12,
		LockFraction:   0.35,
		ATRPeriod:      14,
	}
}

// Engine drives one (symbol, variant) run. It is single-threaded and owns
// its Account exclusively; bars are processed strictly in order.
type Engine struct {
	bars   []types.Bar
	higher []types.Bar
	cfg    Config
}

func NewEngine(bars, higherBars []types.Bar, cfg Config) *Engine {
	return &Engine{bars: bars, higher: higherBars, cfg: cfg}
}

// Run replays the series through the variant. Missing indicator data is a
// normal no-signal condition; Run never fails, it only produces fewer
// trades.
func (e *Engine) Run(v strategy.Variant) *Result {
	acc := account.New(e.cfg.InitialBalance)
	result := &Result{
		Strategy:       v.Name,
		InitialBalance: e.cfg.InitialBalance,
	}

	prices := make([]float64, 0, e.cfg.Lookback)
	volumes := make([]float64, 0, e.cfg.Lookback)
	candles := make([]types.Bar, 0, e.cfg.Lookback)

	simLog.Debug("Starting run", "strategy", v.Name, "bars", len(e.bars))

	for i, bar := range e.bars {
		prices = append(prices, bar.Close)
		volumes = append(volumes, bar.Volume)
		candles = append(candles, bar)
		if len(candles) > e.cfg.Lookback {
			prices = prices[1:]
			volumes = volumes[1:]
			candles = candles[1:]
		}

		if acc.Exhausted {
			continue
		}
		// The variants check this themselves, but the cooldown invariant
		// belongs to the simulator, not to plug-in discipline.
		if !acc.CooledDown(i, e.cfg.CooldownBars) {
			continue
		}

		sig, ok := v.Evaluate(strategy.Context{
			Prices:         prices,
			Candles:        candles,
			Volumes:        volumes,
			HigherCandles:  e.higher,
			Index:          i,
			LastTradeIndex: acc.LastTradeIndex,
			CooldownBars:   e.cfg.CooldownBars,
		})
		if !ok {
			continue
		}

		atrNow, ok := indicator.ATR(candles, e.cfg.ATRPeriod)
		if !ok {
			continue // too early to place a stop, treat as no signal
		}

		levels := v.Risk.LevelsFor(sig.Entry, sig.Direction, atrNow)
		size := risk.Size(sig.Entry, levels.Stop, acc.Balance)

		pos := account.Position{
			Direction:  sig.Direction,
			Entry:      sig.Entry,
			Stop:       levels.Stop,
			Target:     levels.Target,
			Size:       size,
			OpenIndex:  i,
			ATRAtEntry: atrNow,
		}
		acc.Open(pos)

		trade := e.simulateExit(pos, sig)
		acc.Settle(pos, trade.PnL)
		result.Trades = append(result.Trades, trade)

		simLog.Info("Trade closed",
			"strategy", v.Name, "direction", trade.Direction,
			"entry", trade.Entry, "exit", trade.Exit, "pnl", trade.PnL,
			"reason", trade.ExitReason, "balance", acc.Balance)
	}

	result.FinalBalance = acc.Balance
	result.Exhausted = acc.Exhausted
	return result
}

// simulateExit scans forward from the entry bar until an exit condition
// fires, checked in priority order: stop breached, partial-profit lock,
// target reached. If nothing triggers within the holding horizon the
// position force-exits at the last scanned close. Realized P/L always
// comes from the scanned close price, not the nominal stop/target level.
func (e *Engine) simulateExit(pos account.Position, sig types.Signal) account.Trade {
	lockThreshold := pos.Size * pos.ATRAtEntry * e.cfg.LockFraction

	end := pos.OpenIndex + e.cfg.MaxHold
	if end > len(e.bars) {
		end = len(e.bars)
	}

	var (
		pnl       float64
		duration  int
		exitPrice = pos.Entry
		tradeLow  = pos.Entry
		tradeHigh = pos.Entry
		reason    = account.ExitTimeout
	)

	for j := pos.OpenIndex + 1; j < end; j++ {
		price := e.bars[j].Close
		duration++
		exitPrice = price
		tradeLow = math.Min(tradeLow, price)
		tradeHigh = math.Max(tradeHigh, price)

		if pos.Direction == types.Long {
			pnl = pos.Size * (price - pos.Entry)
			if price <= pos.Stop {
				reason = account.ExitStopLoss
			} else if pnl >= lockThreshold {
				reason = account.ExitProfitLock
			} else if price >= pos.Target {
				reason = account.ExitTakeProfit
			} else {
				continue
			}
		} else {
			pnl = pos.Size * (pos.Entry - price)
			if price >= pos.Stop {
				reason = account.ExitStopLoss
			} else if pnl >= lockThreshold {
				reason = account.ExitProfitLock
			} else if price <= pos.Target {
				reason = account.ExitTakeProfit
			} else {
				continue
			}
		}
		break
	}

	return account.Trade{
		Direction:  pos.Direction,
		Entry:      pos.Entry,
		Exit:       exitPrice,
		Stop:       pos.Stop,
		Target:     pos.Target,
		Size:       pos.Size,
		PnL:        pnl,
		Duration:   duration,
		RiskReward: riskReward(pos, exitPrice, tradeLow, tradeHigh),
		ExitReason: reason,
		Reasons:    sig.Reasons,
	}
}

// riskReward relates the realized move to the worst excursion against the
// position, both as fractions of entry.
func riskReward(pos account.Position, exitPrice, tradeLow, tradeHigh float64) float64 {
	const floor = 0.0001

	var riskPct, rewardPct float64
	if pos.Direction == types.Long {
		riskPct = math.Abs(pos.Entry-tradeLow) / pos.Entry
		rewardPct = math.Abs(exitPrice-pos.Entry) / pos.Entry
	} else {
		riskPct = math.Abs(tradeHigh-pos.Entry) / pos.Entry
		rewardPct = math.Abs(pos.Entry-exitPrice) / pos.Entry
	}
	return rewardPct / math.Max(riskPct, floor)
}
