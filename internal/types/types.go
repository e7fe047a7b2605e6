package types

import "time"

const (
	Long  Direction = "long"
	Short Direction = "short"
)

type Direction string

// Bar is one OHLCV sample for a fixed interval. Bars are immutable once
// fetched and are always processed in chronological order.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Timeframe is a bar interval, named the way the market-data API names it.
type Timeframe string

const (
	TF15Min Timeframe = "15Min"
	TF1Hour Timeframe = "1Hour"
	TF1Day  Timeframe = "1Day"
)

// Signal is a directional trade intent produced by one strategy evaluation.
// It is consumed or discarded on the bar that produced it, never persisted.
type Signal struct {
	Direction Direction
	Entry     float64
	ATR       float64
	Reasons   []string
}
