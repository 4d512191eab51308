package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"xmledit/src/editor"
	"xmledit/src/events"
	"xmledit/src/logging"
	"xmledit/src/suggest"
	"xmledit/src/vars"
)

// SaveDecider asks user whether to save modifications.
type SaveDecider interface {
	ConfirmSave(path string) (bool, error)
}

// Info describes an open editor.
type Info struct {
	Path     string
	Name     string
	Modified bool
	Active   bool
	State    editor.State
}

// Workspace coordinates open XML editors, persistence, and observers.
// Its methods may be called from several goroutines; editor access is serialized.
type Workspace struct {
	mu      sync.Mutex
	baseDir string
	editors map[string]editor.Editor
	active  string
	history []string

	bus       *events.Bus
	keeper    *StateKeeper
	logger    *logging.Manager
	decider   SaveDecider
	suggester *suggest.Service
	resolver  vars.Resolver
	scope     vars.Scope
	log       *slog.Logger
}

// NewWorkspace builds a workspace.
func NewWorkspace(baseDir string, bus *events.Bus, keeper *StateKeeper, logger *logging.Manager, decider SaveDecider) *Workspace {
	return &Workspace{
		baseDir:   baseDir,
		editors:   map[string]editor.Editor{},
		bus:       bus,
		keeper:    keeper,
		logger:    logger,
		decider:   decider,
		suggester: suggest.NewService(suggest.Options{}),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetDecider overrides the save decider.
func (w *Workspace) SetDecider(decider SaveDecider) {
	w.decider = decider
}

// SetSuggestService overrides the path suggestion service.
func (w *Workspace) SetSuggestService(service *suggest.Service) {
	w.suggester = service
}

// SetScope enables variable resolution for editors loaded afterwards.
// A nil scope disables it.
func (w *Workspace) SetScope(resolver vars.Resolver, scope vars.Scope) {
	w.resolver = resolver
	w.scope = scope
}

// SetLogger routes workspace and editor diagnostics to logger.
func (w *Workspace) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.log = logger
	}
}

// BaseDir exposes the root directory.
func (w *Workspace) BaseDir() string {
	return w.baseDir
}

// Load opens or activates an XML file.
func (w *Workspace) Load(path string) (editor.Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(path)
}

func (w *Workspace) load(path string) (editor.Editor, error) {
	abs, err := w.resolvePath(path)
	if err != nil {
		return nil, err
	}
	if ed, ok := w.editors[abs]; ok {
		w.setActive(abs)
		return ed, nil
	}
	ed, err := w.open(abs)
	if err != nil {
		return nil, fmt.Errorf("无法打开 %s: %w", abs, err)
	}
	w.editors[abs] = ed
	w.setActive(abs)
	w.applyAutoLog(ed)
	w.log.Info("file loaded", "file", abs)
	return ed, nil
}

func (w *Workspace) open(abs string) (editor.Editor, error) {
	base, err := editor.Open(abs, editor.WithLogger(w.log))
	if err != nil {
		return nil, err
	}
	if w.scope == nil || w.resolver == nil {
		return base, nil
	}
	return editor.NewResolvingEditor(base, w.resolver, w.scope), nil
}

// Get reads the value at an element path of the active file.
func (w *Workspace) Get(path string) (string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return "", false, err
	}
	return ed.Get(path)
}

// GetList reads every value at an element path of the active file.
func (w *Workspace) GetList(path string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return nil, err
	}
	return ed.GetList(path)
}

// GetChildren reads the leaf children below an element path of the active file.
func (w *Workspace) GetChildren(path string) ([]editor.Child, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return nil, err
	}
	return ed.GetChildren(path)
}

// Set rewrites the value at an element path of the active file. A missing path is
// reported together with the closest known paths. The published old value is the value as
// the editor reads it, so with variables enabled it is the resolved text.
func (w *Workspace) Set(path, value string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return false, err
	}
	old, _, err := ed.Get(path)
	if err != nil {
		return false, err
	}
	changed, err := ed.Set(path, value)
	if err != nil {
		if errors.Is(err, editor.ErrPathNotFound) {
			if hints := w.suggest(ed, path); len(hints) > 0 {
				return false, fmt.Errorf("%w (你是不是想找: %s)", err, strings.Join(hints, ", "))
			}
		}
		return false, err
	}
	if changed {
		w.publish(events.Event{
			Type: events.EventValueChanged,
			File: ed.Path(),
			Metadata: map[string]string{
				events.MetaPath:     editor.NormalizePath(path),
				events.MetaOldValue: old,
				events.MetaNewValue: value,
			},
		})
	}
	return changed, nil
}

// Paths lists the element paths of the active file.
func (w *Workspace) Paths() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return nil, err
	}
	return ed.Paths()
}

// Suggest returns known paths of the active file close to path.
func (w *Workspace) Suggest(path string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return nil
	}
	return w.suggest(ed, path)
}

func (w *Workspace) suggest(ed editor.Editor, path string) []string {
	if w.suggester == nil {
		return nil
	}
	paths, err := ed.Paths()
	if err != nil {
		w.log.Debug("collecting paths failed", "file", ed.Path(), "err", err)
		return nil
	}
	w.suggester.Train(paths)
	return w.suggester.Suggest(editor.NormalizePath(path))
}

// Save writes the specified file (empty path means active). It reports whether anything
// was written.
func (w *Workspace) Save(path string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.target(path)
	if err != nil {
		return false, err
	}
	return ed.Save()
}

// SaveAll writes every modified editor.
func (w *Workspace) SaveAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ed := range w.editors {
		if _, err := ed.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Close removes an editor, prompting when necessary.
func (w *Workspace) Close(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.target(path)
	if err != nil {
		return err
	}
	abs := ed.Path()
	if ed.IsDirty() && w.decider != nil {
		save, decErr := w.decider.ConfirmSave(abs)
		if decErr != nil {
			return decErr
		}
		if save {
			if _, err := ed.Save(); err != nil {
				return err
			}
		}
	}
	delete(w.editors, abs)
	w.removeFromHistory(abs)
	next := ""
	if w.active == abs {
		if len(w.history) > 0 {
			next = w.history[0]
		}
	} else {
		next = w.active
	}
	w.setActive(next)
	return nil
}

// Edit switches the active editor.
func (w *Workspace) Edit(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	abs, err := w.resolvePath(path)
	if err != nil {
		return err
	}
	if _, ok := w.editors[abs]; !ok {
		return fmt.Errorf("文件未打开: %s", path)
	}
	w.setActive(abs)
	return nil
}

// List returns info for editors.
func (w *Workspace) List() []Info {
	w.mu.Lock()
	defer w.mu.Unlock()
	result := make([]Info, 0, len(w.editors))
	for path, ed := range w.editors {
		result = append(result, Info{
			Path:     path,
			Name:     ed.Name(),
			Modified: ed.IsDirty(),
			Active:   path == w.active,
			State:    ed.State(),
		})
	}
	return result
}

// Undo rolls the active file back to its snapshot.
func (w *Workspace) Undo() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return false, err
	}
	return ed.Undo()
}

// Redo reverts the last undo of the active file.
func (w *Workspace) Redo() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, err := w.activeEditor()
	if err != nil {
		return false, err
	}
	return ed.Redo()
}

// ActiveEditor returns the current editor.
func (w *Workspace) ActiveEditor() (editor.Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeEditor()
}

func (w *Workspace) activeEditor() (editor.Editor, error) {
	if w.active == "" {
		return nil, errors.New("没有活动文件")
	}
	ed, ok := w.editors[w.active]
	if !ok {
		return nil, errors.New("活动文件不存在")
	}
	return ed, nil
}

// EditorByPath returns an opened editor by path.
func (w *Workspace) EditorByPath(path string) (editor.Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editorByPath(path)
}

func (w *Workspace) editorByPath(path string) (editor.Editor, error) {
	abs, err := w.resolvePath(path)
	if err != nil {
		return nil, err
	}
	ed, ok := w.editors[abs]
	if !ok {
		return nil, fmt.Errorf("文件未打开: %s", path)
	}
	return ed, nil
}

// target resolves an explicit path, or the active editor when path is empty.
func (w *Workspace) target(path string) (editor.Editor, error) {
	if path == "" {
		return w.activeEditor()
	}
	return w.editorByPath(path)
}

// PublishCommand notifies observers about a command.
func (w *Workspace) PublishCommand(name, raw, file string) {
	metadata := map[string]string{}
	w.mu.Lock()
	if w.active != "" {
		metadata["active"] = w.active
	}
	w.mu.Unlock()
	w.publish(events.Event{
		Type:     events.EventCommandExecuted,
		Command:  name,
		Raw:      raw,
		File:     file,
		Metadata: metadata,
	})
}

func (w *Workspace) publish(evt events.Event) {
	if w.bus == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	w.bus.Publish(evt)
}

// Persist saves workspace metadata.
func (w *Workspace) Persist() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := WorkspaceState{
		Active: w.active,
	}
	for path := range w.editors {
		state.Files = append(state.Files, path)
	}
	if w.logger != nil {
		state.Logging = w.logger.ActivePaths()
	}
	return w.keeper.Save(state)
}

// Restore hydrates workspace from disk. Files that no longer open are skipped.
func (w *Workspace) Restore() error {
	state, err := w.keeper.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, path := range state.Files {
		if _, loadErr := w.load(path); loadErr != nil {
			w.log.Warn("skipping file from saved workspace", "file", path, "err", loadErr)
		}
	}
	if state.Active != "" {
		if _, ok := w.editors[state.Active]; ok {
			w.setActive(state.Active)
		}
	}
	if w.logger != nil {
		w.logger.Restore(state.Logging)
	}
	return nil
}

func (w *Workspace) resolvePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("路径不能为空")
	}
	expanded := path
	if !filepath.IsAbs(path) {
		expanded = filepath.Join(w.baseDir, path)
	}
	return filepath.Abs(expanded)
}

func (w *Workspace) setActive(path string) {
	if w.active == path {
		return
	}
	w.active = path
	if path != "" {
		w.touchHistory(path)
	}
}

func (w *Workspace) touchHistory(path string) {
	w.removeFromHistory(path)
	w.history = append([]string{path}, w.history...)
}

func (w *Workspace) removeFromHistory(path string) {
	next := w.history[:0]
	for _, item := range w.history {
		if item != path {
			next = append(next, item)
		}
	}
	w.history = next
}

func (w *Workspace) applyAutoLog(ed editor.Editor) {
	if w.logger == nil {
		return
	}
	attrs, err := ed.RootAttributes()
	if err != nil {
		w.log.Debug("reading root attributes failed", "file", ed.Path(), "err", err)
		return
	}
	if strings.EqualFold(attrs["log"], "true") {
		if err := w.logger.Enable(ed.Path()); err != nil {
			w.log.Warn("enabling command log failed", "file", ed.Path(), "err", err)
		}
	}
}
