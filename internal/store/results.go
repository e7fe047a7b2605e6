// Package store persists run results and fetch progress as structured
// records. Writes are whole-file rewrites of the full collection; callers
// never append.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jmadden91/stratlab/internal/logging"
)

var storeLog = logging.New("store")

// ResultRecord is the best-performing variant retained for one symbol.
type ResultRecord struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name,omitempty"`
	Strategy    string  `json:"strategy"`
	WinRate     float64 `json:"winRate"`
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	AvgDuration float64 `json:"avgDuration"`
	AvgRR       float64 `json:"avgRR"`
	RunID       string  `json:"runId,omitempty"`
}

// ResultStore keeps symbol-keyed result records in a JSON file with
// upsert semantics. Safe for use from multiple goroutines.
type ResultStore struct {
	path string

	mu      sync.Mutex
	records []ResultRecord
}

// OpenResults loads the store, treating a missing or unreadable file as
// empty so an interrupted earlier run never blocks a new one.
func OpenResults(path string) (*ResultStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	s := &ResultStore{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &s.records); jsonErr != nil {
			storeLog.Warn("Results file unreadable, starting empty", "path", path, "error", jsonErr)
			s.records = nil
		}
	}
	return s, nil
}

// Has reports whether a symbol already carries a finalized result, which
// makes re-runs idempotent.
func (s *ResultStore) Has(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Symbol == symbol {
			return true
		}
	}
	return false
}

// Upsert replaces or appends the record for its symbol and rewrites the
// whole file, sorted by win rate descending.
func (s *ResultStore) Upsert(rec ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, r := range s.records {
		if r.Symbol == rec.Symbol {
			s.records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append(s.records, rec)
	}

	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].WinRate > s.records[j].WinRate
	})

	return s.flushLocked()
}

// All returns a copy of the current records.
func (s *ResultStore) All() []ResultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ResultRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *ResultStore) flushLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	storeLog.Debug("Results flushed", "path", s.path, "count", len(s.records))
	return nil
}
