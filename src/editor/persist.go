package editor

import (
	"fmt"
	"os"
)

// history holds the single undo snapshot and the image an undo replaced.
type history struct {
	snapshot []byte
	// saves counts consequential saves since snapshot was taken.
	saves  int
	redo   []byte
	undone []byte
}

// beforeChange runs right before a replacement that changes the buffer. The held snapshot
// survives one save so that edit, save, edit, save still rolls back to the first state.
func (h *history) beforeChange(lines *Lines) {
	if h.snapshot == nil || h.saves > 1 {
		h.snapshot = lines.Bytes()
		h.saves = 0
	}
	h.redo = nil
	h.undone = nil
}

// IsDirty reports whether the buffer holds unsaved edits.
func (e *XMLEditor) IsDirty() bool {
	return e.lines.Dirty()
}

// State reports the persistence state of the editor.
func (e *XMLEditor) State() State {
	switch {
	case e.lines.Dirty():
		return StateDirty
	case e.history.snapshot != nil && e.history.saves > 0:
		return StateSavedWithUndo
	default:
		return StateClean
	}
}

// Save writes the buffer to the file. It reports false when there was nothing to write.
func (e *XMLEditor) Save() (bool, error) {
	if !e.lines.Dirty() {
		return false, nil
	}
	file, err := os.OpenFile(e.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	n, err := e.lines.WriteTo(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("%w: writing %s: %w", ErrIO, e.path, err)
	}
	if e.history.snapshot != nil {
		e.history.saves++
	}
	e.logger.Debug("saved", "file", e.path, "bytes", n)
	return true, nil
}

// Undo restores the file to the snapshot taken before the first edit and reloads it.
// It reports false when no snapshot is held.
func (e *XMLEditor) Undo() (bool, error) {
	if e.history.snapshot == nil {
		return false, nil
	}
	current := e.lines.Bytes()
	if err := e.restore(e.history.snapshot); err != nil {
		return false, err
	}
	e.history = history{redo: current, undone: e.history.snapshot}
	e.logger.Debug("undone", "file", e.path)
	return true, nil
}

// Redo writes back the content replaced by the last Undo and re-arms that undo.
// It reports false when there is nothing to redo.
func (e *XMLEditor) Redo() (bool, error) {
	if e.history.redo == nil {
		return false, nil
	}
	if err := e.restore(e.history.redo); err != nil {
		return false, err
	}
	e.history = history{snapshot: e.history.undone, saves: 1}
	e.logger.Debug("redone", "file", e.path)
	return true, nil
}

// restore overwrites the file with data and reloads the buffer from it.
func (e *XMLEditor) restore(data []byte) error {
	file, err := os.OpenFile(e.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, e.path, err)
	}
	return e.load()
}

// load replaces the buffer with the current file content.
func (e *XMLEditor) load() error {
	file, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()
	lines, err := ReadLines(file)
	if err != nil {
		return fmt.Errorf("loading %s: %w", e.path, err)
	}
	e.lines = lines
	e.logger.Debug("loaded", "file", e.path, "lines", lines.Len())
	return nil
}

// checkAccess fails unless path is an existing regular file the process can read and write.
func checkAccess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrIO, path)
	}
	if err := accessible(path); err != nil {
		return fmt.Errorf("%w: %s must be readable and writable: %w", ErrIO, path, err)
	}
	return nil
}
