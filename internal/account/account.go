package account

import (
	"fmt"
	"log/slog"

	"github.com/jmadden91/stratlab/internal/types"
)

const (
	ExitStopLoss   = "STOP_LOSS"
	ExitProfitLock = "PROFIT_LOCK"
	ExitTakeProfit = "TAKE_PROFIT"
	ExitTimeout    = "TIMEOUT"

	Win  Outcome = "win"
	Loss Outcome = "loss"

	// noTradeIndex keeps the cooldown gate open before the first trade
	// for any sane cooldown value.
	noTradeIndex = -999
)

type Outcome string

// Account is the running simulation state for one (symbol, variant) run.
// It has a single writer, the simulator, and is never shared across runs.
type Account struct {
	Balance        float64
	LastTradeIndex int
	Exhausted      bool
}

// Position exists only while a simulated trade is open. Its stop and
// target are set before any forward simulation step executes.
type Position struct {
	Direction  types.Direction
	Entry      float64
	Stop       float64
	Target     float64
	Size       float64
	OpenIndex  int
	ATRAtEntry float64
}

// Trade is the immutable record produced when a Position exits.
type Trade struct {
	Direction  types.Direction
	Entry      float64
	Exit       float64
	Stop       float64
	Target     float64
	Size       float64
	PnL        float64
	Duration   int // bars held
	RiskReward float64
	ExitReason string
	Reasons    []string
}

// Outcome classifies the trade: anything breakeven or better is a win.
func (t Trade) Outcome() Outcome {
	if t.PnL >= 0 {
		return Win
	}
	return Loss
}

func (t Trade) String() string {
	return fmt.Sprintf("%s | Entry: %.4f | Exit: %.4f | P/L: %.2f | %d bars | %s",
		t.Direction, t.Entry, t.Exit, t.PnL, t.Duration, t.ExitReason)
}

func New(initialBalance float64) *Account {
	return &Account{
		Balance:        initialBalance,
		LastTradeIndex: noTradeIndex,
	}
}

// CooledDown reports whether enough bars have passed since the last entry.
func (a *Account) CooledDown(currentIndex, cooldownBars int) bool {
	return currentIndex-a.LastTradeIndex >= cooldownBars
}

// Open debits the notional position cost and records the entry index for
// the cooldown gate.
func (a *Account) Open(pos Position) {
	a.Balance -= pos.Size * pos.Entry
	a.LastTradeIndex = pos.OpenIndex
	slog.Debug("Opened position",
		"direction", pos.Direction, "entry", pos.Entry, "stop", pos.Stop,
		"target", pos.Target, "size", pos.Size, "notional", pos.Size*pos.Entry)
}

// Settle credits the notional plus realized P/L back. The balance is
// clamped at zero; once exhausted no further entries are permitted for
// the remainder of the run.
func (a *Account) Settle(pos Position, pnl float64) {
	a.Balance += pos.Size*pos.Entry + pnl
	if a.Balance <= 0 {
		a.Balance = 0
		a.Exhausted = true
		slog.Info("Account exhausted, suppressing further entries")
	}
}
