package drive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestProcessedSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	s, err := LoadProcessedSet(path)
	if err != nil {
		t.Fatalf("LoadProcessedSet() error = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("new set has %d entries", s.Len())
	}

	if err := s.MarkSuccess("file-1", "craig_a.zip"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkFailed("file-2", "craig_b.zip", "bad archive"); err != nil {
		t.Fatal(err)
	}

	if !s.Contains("file-1") || !s.Contains("file-2") {
		t.Error("marked ids missing from the set")
	}
	if s.Contains("file-3") {
		t.Error("unmarked id reported as contained")
	}

	// A fresh load sees both terminal outcomes.
	reloaded, err := LoadProcessedSet(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("reloaded set has %d entries, want 2", reloaded.Len())
	}
	if !reloaded.Contains("file-1") || !reloaded.Contains("file-2") {
		t.Error("reloaded set lost ids")
	}
}

func TestProcessedSetPreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	seed := `[{"id":"file-1","status":"success","custom_note":"keep me"}]`
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadProcessedSet(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSuccess("file-2", "craig_b.zip"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if e["id"] == "file-1" && e["custom_note"] == "keep me" {
			found = true
		}
	}
	if !found {
		t.Errorf("unknown field dropped on rewrite: %s", data)
	}
}

func TestProcessedSetAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed.json")

	s, err := LoadProcessedSet(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := s.MarkSuccess(filepath.Base(t.Name())+string(rune('a'+i)), "f.zip"); err != nil {
			t.Fatal(err)
		}
	}

	// No temp-file droppings left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the state file", len(entries))
	}

	// The file is always complete JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Errorf("state file is not valid JSON: %v", err)
	}
	if len(decoded) != 10 {
		t.Errorf("state file has %d entries, want 10", len(decoded))
	}
}

func TestProcessedSetCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProcessedSet(path); err == nil {
		t.Error("LoadProcessedSet() accepted a corrupt file")
	}
}
