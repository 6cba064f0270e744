package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chains.snap")
	ctx := context.Background()

	s := NewMemoryStore()
	first, _ := s.Create(ctx, sampleDraft("proj-1", "first"))
	second, _ := s.Create(ctx, sampleDraft("proj-1", "second"))
	s.Create(ctx, sampleDraft("proj-2", "elsewhere"))

	if err := s.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	restored := NewMemoryStore()
	if err := restored.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if restored.Count() != 3 {
		t.Fatalf("restored %d chains, want 3", restored.Count())
	}

	got, err := restored.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get after restore failed: %v", err)
	}
	if got.Name != "first" || len(got.Steps) != 2 || got.Steps[0].SequenceOrder != 1 {
		t.Errorf("restored chain = %+v", got)
	}

	// Per-project creation order survives the round trip
	summaries, _ := restored.ListByProject(ctx, "proj-1")
	if len(summaries) != 2 || summaries[0].ID != first.ID || summaries[1].ID != second.ID {
		t.Errorf("restored listing = %+v", summaries)
	}
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	s := NewMemoryStore()
	if err := s.LoadSnapshot(filepath.Join(t.TempDir(), "nope.snap")); err != nil {
		t.Fatalf("missing snapshot must not be an error, got %v", err)
	}
	if s.Count() != 0 {
		t.Error("store must start empty")
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewMemoryStore()
	if err := s.LoadSnapshot(path); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestSaveSnapshot_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "chains.snap")

	s := NewMemoryStore()
	s.Create(context.Background(), sampleDraft("proj-1", "only"))

	if err := s.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	// Temp file must be gone after the rename
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
