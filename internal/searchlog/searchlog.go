// Package searchlog persists completed search interactions to a JSON file,
// mainly for offline inspection of what a session actually searched and got.
package searchlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/locipoint/nearby-api/internal/types"
)

// Writer appends search records to a single JSON file. The file always holds
// a valid JSON array; each write rewrites it in full, which is fine for the
// interactive volumes this log sees.
type Writer struct {
	path string

	mu      sync.Mutex
	records []types.SearchRecord
}

// NewWriter creates a Writer targeting path, loading any records an earlier
// run left there.
func NewWriter(path string) (*Writer, error) {
	w := &Writer{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w, nil
		}
		return nil, fmt.Errorf("failed to read search log: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &w.records); err != nil {
			return nil, fmt.Errorf("failed to parse existing search log: %w", err)
		}
	}
	return w, nil
}

// Write appends one record and flushes the log to disk.
func (w *Writer) Write(record types.SearchRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, record)

	data, err := json.MarshalIndent(w.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal search log: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create search log directory: %w", err)
		}
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write search log: %w", err)
	}
	return nil
}
