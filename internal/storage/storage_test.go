package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionIDCreatedOnceAndReused(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	first, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID returned error: %v", err)
	}
	if first == "" {
		t.Fatalf("expected non-empty session id")
	}

	// A fresh store over the same dir models a process restart.
	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	second, err := reopened.SessionID()
	if err != nil {
		t.Fatalf("SessionID returned error: %v", err)
	}
	if second != first {
		t.Fatalf("session id changed across restart: %q vs %q", first, second)
	}
}

func TestSessionIDRotatesAfterStateWipe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	first, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID returned error: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "session.json")); err != nil {
		t.Fatalf("remove session file: %v", err)
	}
	second, err := store.SessionID()
	if err != nil {
		t.Fatalf("SessionID returned error: %v", err)
	}
	if second == first {
		t.Fatalf("expected a new session id after clearing stored state")
	}
}

func TestUIStateRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	if got := store.LoadUIState(); got != DefaultUIState() {
		t.Fatalf("expected defaults for missing ui state, got %+v", got)
	}

	want := UIState{Theme: "dark", DockWidth: 512, DockVisible: false}
	if err := store.SaveUIState(want); err != nil {
		t.Fatalf("SaveUIState returned error: %v", err)
	}
	if got := store.LoadUIState(); got != want {
		t.Fatalf("ui state mismatch: got %+v want %+v", got, want)
	}
}

func TestLoadUIStateRepairsMissingFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ui.json"), []byte(`{"dock_visible":true}`), 0o600); err != nil {
		t.Fatalf("write ui file: %v", err)
	}

	got := store.LoadUIState()
	if got.Theme != "light" {
		t.Fatalf("expected theme fallback, got %q", got.Theme)
	}
	if got.DockWidth <= 0 {
		t.Fatalf("expected dock width fallback, got %d", got.DockWidth)
	}
}

func TestNewStoreRequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := NewStore("  "); err == nil {
		t.Fatalf("expected error for empty state dir")
	}
}
