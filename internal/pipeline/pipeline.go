// Package pipeline drives acquisition of historical bars across a symbol
// universe. It paces calls to stay inside the data provider's rate
// budget, retries transient failures, pauses every worker on a rate-limit
// response, and checkpoints after each completed symbol so an interrupted
// run resumes where it stopped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmadden91/stratlab/internal/logging"
	"github.com/jmadden91/stratlab/internal/marketdata"
	"github.com/jmadden91/stratlab/internal/store"
	"github.com/jmadden91/stratlab/internal/types"
)

var pipeLog = logging.New("pipeline")

type Config struct {
	// Concurrency is the number of symbols fetched in parallel.
	Concurrency int
	// CallDelay is the fixed pause before every API call. With two
	// workers and a 1.2s delay the steady-state call rate stays under
	// 100 calls/minute.
	CallDelay time.Duration
	// MaxRetries bounds attempts per (symbol, timeframe) fetch.
	MaxRetries int
	// RetryBackoff is the base backoff; attempt n waits n*RetryBackoff.
	RetryBackoff time.Duration
	// RateLimitPause is how long all workers stand down after a 429.
	RateLimitPause time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency:    2,
		CallDelay:      1200 * time.Millisecond,
		MaxRetries:     5,
		RetryBackoff:   2 * time.Second,
		RateLimitPause: 25 * time.Second,
	}
}

// Handler receives every fetched timeframe for one symbol. It runs
// before the checkpoint is written, so a checkpointed symbol is one whose
// handler completed.
type Handler func(symbol string, bars map[types.Timeframe][]types.Bar) error

// Fetcher runs the acquisition loop. The pause state is shared so that a
// rate-limit response from any worker stalls all of them.
type Fetcher struct {
	source marketdata.Source
	ckpt   *store.CheckpointStore
	cfg    Config
	handle Handler

	mu         sync.Mutex
	pauseUntil time.Time
}

func New(source marketdata.Source, ckpt *store.CheckpointStore, cfg Config, handle Handler) *Fetcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Fetcher{
		source: source,
		ckpt:   ckpt,
		cfg:    cfg,
		handle: handle,
	}
}

// Run fetches every timeframe for every symbol. Symbols at or before the
// checkpointed one are skipped on startup. A symbol that exhausts its
// retry budget is logged and skipped; only cancellation or a checkpoint
// write failure aborts the run.
func (f *Fetcher) Run(ctx context.Context, symbols []string, timeframes []types.Timeframe, from, to time.Time) error {
	start := 0
	if cp, ok, err := f.ckpt.Load(); err != nil {
		return err
	} else if ok {
		for i, sym := range symbols {
			if sym == cp.LastSymbol {
				start = i + 1
				break
			}
		}
		pipeLog.Info("Resuming from checkpoint", "lastSymbol", cp.LastSymbol, "remaining", len(symbols)-start)
	}

	work := make(chan string)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for _, sym := range symbols[start:] {
			select {
			case work <- sym:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < f.cfg.Concurrency; i++ {
		g.Go(func() error {
			for sym := range work {
				if err := f.processSymbol(ctx, sym, timeframes, from, to); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					pipeLog.Warn("Symbol failed, moving on", "symbol", sym, "error", err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (f *Fetcher) processSymbol(ctx context.Context, symbol string, timeframes []types.Timeframe, from, to time.Time) error {
	var lastTF types.Timeframe
	var lastTS time.Time
	collected := make(map[types.Timeframe][]types.Bar, len(timeframes))

	for _, tf := range timeframes {
		req := marketdata.Request{Symbol: symbol, Timeframe: tf, From: from, To: to}

		bars, err := f.fetchWithRetry(ctx, req)
		if errors.Is(err, marketdata.ErrNotFound) {
			pipeLog.Warn("No data", "symbol", symbol, "timeframe", tf)
			continue
		}
		if err != nil {
			return err
		}

		collected[tf] = bars
		lastTF = tf
		if len(bars) > 0 {
			lastTS = bars[len(bars)-1].Timestamp
		}
	}

	if err := f.handle(symbol, collected); err != nil {
		return fmt.Errorf("handle bars %s: %w", symbol, err)
	}

	cp := store.Checkpoint{LastSymbol: symbol, LastTimeframe: lastTF, LastTimestamp: lastTS}
	if err := f.ckpt.Save(cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	pipeLog.Debug("Symbol complete", "symbol", symbol)
	return nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, req marketdata.Request) ([]types.Bar, error) {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.awaitTurn(ctx); err != nil {
			return nil, err
		}

		bars, err := f.source.FetchBars(ctx, req)
		if err == nil {
			return bars, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, marketdata.ErrNotFound):
			return nil, err
		case errors.Is(err, marketdata.ErrRateLimited):
			f.pauseAll()
			pipeLog.Warn("Rate limited, pausing all workers", "symbol", req.Symbol, "pause", f.cfg.RateLimitPause)
		case errors.Is(err, marketdata.ErrTransient):
			backoff := time.Duration(attempt) * f.cfg.RetryBackoff
			pipeLog.Warn("Transient fetch failure", "symbol", req.Symbol, "timeframe", req.Timeframe, "attempt", attempt, "backoff", backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("retries exhausted for %s %s: %w", req.Symbol, req.Timeframe, lastErr)
}

// awaitTurn enforces the per-call delay, then blocks while a global pause
// is in effect. The pause is re-checked after sleeping because another
// worker may have extended it.
func (f *Fetcher) awaitTurn(ctx context.Context) error {
	if err := sleepCtx(ctx, f.cfg.CallDelay); err != nil {
		return err
	}
	for {
		f.mu.Lock()
		wait := time.Until(f.pauseUntil)
		f.mu.Unlock()
		if wait <= 0 {
			return nil
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

func (f *Fetcher) pauseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	until := time.Now().Add(f.cfg.RateLimitPause)
	if until.After(f.pauseUntil) {
		f.pauseUntil = until
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
