package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultStateFile is used when no state file name is configured.
const DefaultStateFile = ".xmledit_workspace"

// WorkspaceState captures persisted workspace info.
type WorkspaceState struct {
	Files   []string `json:"files"`
	Active  string   `json:"active"`
	Logging []string `json:"logging"`
}

// StateKeeper reads/writes workspace state.
type StateKeeper struct {
	path string
}

// NewStateKeeper builds a state keeper storing name inside baseDir.
func NewStateKeeper(baseDir, name string) *StateKeeper {
	if name == "" {
		name = DefaultStateFile
	}
	return &StateKeeper{
		path: filepath.Join(baseDir, name),
	}
}

// Path returns the state file location.
func (s *StateKeeper) Path() string {
	return s.path
}

// Save persists workspace state to disk.
func (s *StateKeeper) Save(state WorkspaceState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Load restores workspace state if present.
func (s *StateKeeper) Load() (WorkspaceState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return WorkspaceState{}, err
	}
	var state WorkspaceState
	if err := json.Unmarshal(data, &state); err != nil {
		return WorkspaceState{}, err
	}
	return state, nil
}
