package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmadden91/stratlab/internal/backtest"
	"github.com/jmadden91/stratlab/internal/config"
	"github.com/jmadden91/stratlab/internal/marketdata"
	"github.com/jmadden91/stratlab/internal/orchestrator"
	"github.com/jmadden91/stratlab/internal/pipeline"
	"github.com/jmadden91/stratlab/internal/store"
	"github.com/jmadden91/stratlab/internal/types"
)

var timeframes = []types.Timeframe{types.TF15Min, types.TF1Hour, types.TF1Day}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Bad configuration", "error", err)
		os.Exit(1)
	}

	results, err := store.OpenResults(filepath.Join(cfg.DataDir, "results.json"))
	if err != nil {
		slog.Error("Failed to open result store", "error", err)
		os.Exit(1)
	}

	ckpt, err := store.OpenCheckpoint(filepath.Join(cfg.DataDir, "checkpoint.json"))
	if err != nil {
		slog.Error("Failed to open checkpoint store", "error", err)
		os.Exit(1)
	}

	universe, err := store.LoadUniverse(cfg.UniversePath)
	if err != nil {
		slog.Error("Failed to load symbol universe", "error", err)
		os.Exit(1)
	}

	symbols := make([]string, 0, len(universe))
	names := make(map[string]string, len(universe))
	for _, entry := range universe {
		symbols = append(symbols, entry.Symbol)
		names[entry.Symbol] = entry.Name
	}

	orch := orchestrator.New(results, cfg.Variants(), backtest.DefaultConfig(), names)
	source := marketdata.NewAlpacaClient(cfg.AlpacaKeyID, cfg.AlpacaSecretKey, cfg.AlpacaBaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	to := time.Now()
	from := to.AddDate(0, 0, -cfg.LookbackDays)

	slog.Info("Starting run",
		"runId", orch.RunID(), "symbols", len(symbols),
		"variants", len(cfg.Variants()), "from", from.Format(time.DateOnly))

	fetcher := pipeline.New(source, ckpt, pipeline.DefaultConfig(), orch.HandleSymbol)
	if err := fetcher.Run(ctx, symbols, timeframes, from, to); err != nil {
		slog.Error("Run aborted", "error", err)
		os.Exit(1)
	}

	if rerun := orch.RerunQueue(); len(rerun) > 0 {
		slog.Info("Rerunning zero-trade symbols over a wider window", "count", len(rerun))

		rerunCkpt, err := store.OpenCheckpoint(filepath.Join(cfg.DataDir, "checkpoint_rerun.json"))
		if err != nil {
			slog.Error("Failed to open rerun checkpoint store", "error", err)
			os.Exit(1)
		}

		rerunFrom := to.AddDate(0, 0, -cfg.RerunLookbackDays)
		rerunFetcher := pipeline.New(source, rerunCkpt, pipeline.DefaultConfig(), orch.HandleRerun)
		if err := rerunFetcher.Run(ctx, rerun, timeframes, rerunFrom, to); err != nil {
			slog.Error("Rerun aborted", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Run complete", "runId", orch.RunID(), "results", len(results.All()))
}
