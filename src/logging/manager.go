package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"xmledit/src/events"
)

const timeLayout = "20060102 15:04:05"

// ErrNoLog indicates that no command log has been written for a file yet.
var ErrNoLog = errors.New("no command log")

// fileLog is the logging state of one source file.
type fileLog struct {
	enabled bool
	// started is set once the session header has been written.
	started bool
}

// Manager keeps a command log next to each XML file that has logging switched on.
// It subscribes to the event bus and appends one line per command or value change.
type Manager struct {
	mu     sync.Mutex
	files  map[string]*fileLog
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a Manager. Write failures are reported to logger.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		files:  map[string]*fileLog{},
		logger: logger,
		now:    time.Now,
	}
}

// Handle records command and value events for files with logging enabled.
func (m *Manager) Handle(evt events.Event) {
	if evt.File == "" {
		return
	}
	text, ok := entryText(evt)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.files[evt.File]
	if state == nil || !state.enabled {
		return
	}
	stamp := evt.Timestamp
	if stamp.IsZero() {
		stamp = m.now()
	}
	m.write(evt.File, stamp.Format(timeLayout)+" "+text)
}

func entryText(evt events.Event) (string, bool) {
	switch evt.Type {
	case events.EventCommandExecuted:
		return evt.Raw, true
	case events.EventValueChanged:
		meta := evt.Metadata
		return fmt.Sprintf("set %s: %q -> %q", meta[events.MetaPath], meta[events.MetaOldValue], meta[events.MetaNewValue]), true
	default:
		return "", false
	}
}

// Enable switches logging on for a file. The first call per session writes a header line.
func (m *Manager) Enable(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.files[abs]
	if state == nil {
		state = &fileLog{}
		m.files[abs] = state
	}
	state.enabled = true
	if !state.started {
		state.started = m.write(abs, "session start at "+m.now().Format(timeLayout))
	}
	return nil
}

// Disable switches logging off for a file. The log file is kept.
func (m *Manager) Disable(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.files[abs]; state != nil {
		state.enabled = false
	}
	return nil
}

// Enabled reports whether logging is on for path.
func (m *Manager) Enabled(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.files[abs]
	return state != nil && state.enabled
}

// Restore switches logging back on for files saved in the workspace state.
func (m *Manager) Restore(paths []string) {
	for _, p := range paths {
		if err := m.Enable(p); err != nil {
			m.logger.Warn("restoring command log failed", "file", p, "err", err)
		}
	}
}

// ActivePaths lists the files with logging on, sorted.
func (m *Manager) ActivePaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []string
	for path, state := range m.files {
		if state.enabled {
			result = append(result, path)
		}
	}
	sort.Strings(result)
	return result
}

// LogFilePath returns the hidden log file kept beside source: dir/.name.log.
func LogFilePath(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(abs), "."+filepath.Base(abs)+".log"), nil
}

// Show returns the log contents for a file.
func (m *Manager) Show(path string) (string, error) {
	logPath, err := LogFilePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoLog, path)
		}
		return "", err
	}
	return string(data), nil
}

// write appends one line to the log of source and reports whether it landed.
// Callers hold m.mu.
func (m *Manager) write(source, line string) bool {
	logPath, err := LogFilePath(source)
	if err == nil {
		err = appendLine(logPath, line)
	}
	if err != nil {
		m.logger.Warn("command log write failed", "file", source, "err", err)
		return false
	}
	return true
}

func appendLine(logPath, line string) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
