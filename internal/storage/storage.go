// Package storage persists the small pieces of client state that outlive
// the process: the opaque chat session identity and UI preferences.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionFileName = "session.json"
	uiFileName      = "ui.json"
)

type Store struct {
	stateDir string
}

type sessionState struct {
	SessionID string `json:"session_id"`
}

// UIState holds persisted presentation preferences. DockWidth is in layout
// units, already clamped by the dock before it gets here.
type UIState struct {
	Theme       string `json:"theme"`
	DockWidth   int    `json:"dock_width"`
	DockVisible bool   `json:"dock_visible"`
}

// DefaultUIState matches a fresh profile: light theme, dock open at its
// initial width.
func DefaultUIState() UIState {
	return UIState{Theme: "light", DockWidth: 360, DockVisible: true}
}

func NewStore(stateDir string) (*Store, error) {
	stateDir = strings.TrimSpace(stateDir)
	if stateDir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{stateDir: stateDir}, nil
}

func (s *Store) StateDir() string {
	return s.stateDir
}

// SessionID returns the durable session identity, creating and persisting
// one on first call. Read-if-present, create-and-store-if-absent: repeated
// calls across process restarts yield the same identity until the state
// dir is wiped.
func (s *Store) SessionID() (string, error) {
	path := filepath.Join(s.stateDir, sessionFileName)

	var state sessionState
	if err := readJSON(path, &state); err == nil && strings.TrimSpace(state.SessionID) != "" {
		return state.SessionID, nil
	}

	state.SessionID = uuid.NewString()
	if err := writeJSON(path, state); err != nil {
		return "", err
	}
	return state.SessionID, nil
}

// LoadUIState reads persisted UI preferences, falling back to defaults when
// the file is missing or unreadable.
func (s *Store) LoadUIState() UIState {
	var state UIState
	if err := readJSON(filepath.Join(s.stateDir, uiFileName), &state); err != nil {
		return DefaultUIState()
	}
	if strings.TrimSpace(state.Theme) == "" {
		state.Theme = "light"
	}
	if state.DockWidth <= 0 {
		state.DockWidth = DefaultUIState().DockWidth
	}
	return state
}

func (s *Store) SaveUIState(state UIState) error {
	return writeJSON(filepath.Join(s.stateDir, uiFileName), state)
}

func writeJSON(path string, value any) error {
	blob, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json for %s: %w", path, err)
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
