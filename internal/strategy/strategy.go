// Package strategy defines the pluggable signal-evaluation contract and a
// registry of interchangeable variants. Every variant is a stateless
// function: identical inputs always produce identical output, and no
// variant inspects any other variant's state.
package strategy

import (
	"fmt"
	"sort"

	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/risk"
	"github.com/jmadden91/stratlab/internal/types"
)

var stratLog = logging.New("strategy")

// higherBarsRatio maps lower-timeframe progress onto the higher-timeframe
// series (12 lower bars per higher bar, e.g. 5min inside 1hr).
const higherBarsRatio = 12

// Context is the read-only view handed to an evaluator for one bar: the
// trailing windows, the higher-timeframe series, and the cooldown state.
type Context struct {
	Prices        []float64
	Candles       []types.Bar
	Volumes       []float64
	HigherCandles []types.Bar

	Index          int
	LastTradeIndex int
	CooldownBars   int
}

// Cooled reports whether the cooldown gate allows a new entry.
func (c Context) Cooled() bool {
	return c.Index-c.LastTradeIndex >= c.CooldownBars
}

// HigherView returns the higher-timeframe candles that exist at the
// current lower-timeframe index, so a variant cannot peek ahead.
func (c Context) HigherView() []types.Bar {
	n := c.Index/higherBarsRatio + 1
	if n > len(c.HigherCandles) {
		n = len(c.HigherCandles)
	}
	return c.HigherCandles[:n]
}

// Func evaluates one bar and produces a signal, or ok=false for no entry.
// Insufficient window data is a normal no-signal condition, never an error.
type Func func(Context) (types.Signal, bool)

// Variant is a named, registered strategy with the risk parameters it was
// tuned against.
type Variant struct {
	Name     string
	Risk     risk.Params
	Evaluate Func
}

var registry = make(map[string]Variant)

// Register adds a variant to the registry. Called from variant init funcs.
func Register(v Variant) {
	registry[v.Name] = v
}

// Get looks a variant up by name.
func Get(name string) (Variant, error) {
	v, ok := registry[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown strategy %q", name)
	}
	return v, nil
}

// Names returns the registered variant names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered variants in name order. The set may be empty;
// callers must tolerate that.
func All() []Variant {
	variants := make([]Variant, 0, len(registry))
	for _, name := range Names() {
		variants = append(variants, registry[name])
	}
	return variants
}
