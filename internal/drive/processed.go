package drive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ProcessedSet is the persistent set of drive-file ids whose handling
// reached a terminal outcome. Entries are JSON objects in a list; unknown
// fields on an entry are preserved verbatim on rewrite. Writes replace the
// file atomically and the set never shrinks during a process lifetime.
type ProcessedSet struct {
	path string

	mu      sync.Mutex
	entries []map[string]interface{}
	index   map[string]int
}

// LoadProcessedSet reads the set from path. A missing file yields an
// empty set; a corrupt file is an error so a truncated state file is
// noticed rather than silently reprocessing everything.
func LoadProcessedSet(path string) (*ProcessedSet, error) {
	s := &ProcessedSet{
		path:  path,
		index: make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read processed set %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse processed set %s: %w", path, err)
	}
	for i, e := range s.entries {
		if id, ok := e["id"].(string); ok {
			s.index[id] = i
		}
	}
	return s, nil
}

// Contains reports whether the file id already reached a terminal outcome.
func (s *ProcessedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the number of recorded entries.
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MarkSuccess records a successful terminal outcome and persists.
func (s *ProcessedSet) MarkSuccess(id, name string) error {
	return s.mark(id, map[string]interface{}{
		"id":           id,
		"name":         name,
		"status":       "success",
		"processed_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// MarkFailed records a failed terminal outcome and persists, preventing
// reprocessing loops.
func (s *ProcessedSet) MarkFailed(id, name, reason string) error {
	return s.mark(id, map[string]interface{}{
		"id":        id,
		"name":      name,
		"status":    "error",
		"error":     reason,
		"failed_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *ProcessedSet) mark(id string, entry map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok {
		// Preserve fields a newer writer may have added.
		for k, v := range entry {
			s.entries[i][k] = v
		}
	} else {
		s.entries = append(s.entries, entry)
		s.index[id] = len(s.entries) - 1
	}
	return s.saveLocked()
}

// saveLocked writes the set via write-to-temp-then-rename so readers
// never observe a partial file.
func (s *ProcessedSet) saveLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode processed set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".processed-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
