package store

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// UniverseEntry is one row of the symbol universe CSV.
type UniverseEntry struct {
	Symbol string `csv:"Symbol"`
	Name   string `csv:"Name"`
}

// LoadUniverse reads the symbol universe from a CSV file. SPY is always
// included as a market baseline even when the file omits it.
func LoadUniverse(path string) ([]UniverseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()

	var entries []UniverseEntry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.Symbol == "" || seen[e.Symbol] {
			continue
		}
		seen[e.Symbol] = true
		out = append(out, e)
	}

	if !seen["SPY"] {
		out = append(out, UniverseEntry{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust"})
	}

	storeLog.Info("Loaded symbol universe", "path", path, "symbols", len(out))
	return out, nil
}
