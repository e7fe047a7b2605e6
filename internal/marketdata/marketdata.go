// Package marketdata defines the contract with the external market-data
// collaborator and an HTTP client implementing it against an Alpaca-style
// bars API.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/jmadden91/stratlab/internal/types"
)

var (
	// ErrRateLimited signals account-wide throttling; the caller should
	// pause globally, not retry per symbol.
	ErrRateLimited = errors.New("marketdata: rate limited")
	// ErrNotFound means the symbol or range has no data.
	ErrNotFound = errors.New("marketdata: not found")
	// ErrTransient wraps network and 5xx failures worth retrying.
	ErrTransient = errors.New("marketdata: transient error")
)

// Request names one (symbol, timeframe, date range) fetch.
type Request struct {
	Symbol    string
	Timeframe types.Timeframe
	From      time.Time
	To        time.Time
}

// Source returns ordered chronological bars for a request.
type Source interface {
	FetchBars(ctx context.Context, req Request) ([]types.Bar, error)
}
