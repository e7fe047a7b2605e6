package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmadden91/stratlab/internal/types"
)

// Checkpoint records fetch progress so an interrupted run resumes where
// it stopped. It is the sole source of truth for resumability.
type Checkpoint struct {
	LastSymbol    string          `json:"lastProcessedSymbol"`
	LastTimeframe types.Timeframe `json:"lastProcessedTimeframe"`
	LastTimestamp time.Time       `json:"lastTimestamp"`
}

// CheckpointStore persists the checkpoint as a single JSON file. It is
// shared across the fetch worker pool, hence the lock.
type CheckpointStore struct {
	path string
	mu   sync.Mutex
}

func OpenCheckpoint(path string) (*CheckpointStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &CheckpointStore{path: path}, nil
}

// Load reads the checkpoint; ok is false when none has been written yet.
func (s *CheckpointStore) Load() (Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, cp.LastSymbol != "", nil
}

// Save rewrites the checkpoint. Called after every completed symbol, not
// batched, so a crash loses at most one symbol of progress.
func (s *CheckpointStore) Save(cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
