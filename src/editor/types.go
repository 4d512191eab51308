package editor

// Editor exposes the operations shared by the plain and the variable-aware editors.
type Editor interface {
	Path() string
	Name() string
	Get(path string) (string, bool, error)
	GetList(path string) ([]string, error)
	GetChildren(path string) ([]Child, error)
	Set(path, value string) (bool, error)
	Paths() ([]string, error)
	RootAttributes() (map[string]string, error)
	IsDirty() bool
	State() State
	Save() (bool, error)
	Undo() (bool, error)
	Redo() (bool, error)
}

// Child is a leaf element found below a queried path.
type Child struct {
	Name  string
	Value string
}

// State describes the persistence state of an editor.
type State uint8

const (
	// StateClean means the buffer matches the file and no undo is pending.
	StateClean State = iota
	// StateDirty means the buffer holds unsaved edits.
	StateDirty
	// StateSavedWithUndo means edits were saved and can still be rolled back.
	StateSavedWithUndo
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDirty:
		return "dirty"
	case StateSavedWithUndo:
		return "saved"
	default:
		return "clean"
	}
}
