package editor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// XMLEditor reads and rewrites leaf values of an XML file in place. Bytes outside the
// replaced values are kept exactly as loaded. It is not safe for concurrent use.
type XMLEditor struct {
	path    string
	lines   *Lines
	history history
	logger  *slog.Logger
}

// Option configures an XMLEditor.
type Option func(*XMLEditor)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *XMLEditor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Open checks that path is a readable and writable regular file and loads it.
func Open(path string, opts ...Option) (*XMLEditor, error) {
	if err := checkAccess(path); err != nil {
		return nil, err
	}
	e := &XMLEditor{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// Path returns the backing file path.
func (e *XMLEditor) Path() string {
	return e.path
}

// Name returns the file name for display.
func (e *XMLEditor) Name() string {
	return filepath.Base(e.path)
}

// Lines exposes the document buffer.
func (e *XMLEditor) Lines() *Lines {
	return e.lines
}

// Get returns the trimmed text of the first element at path that holds character data.
// Comments and processing instructions around the text are skipped.
func (e *XMLEditor) Get(path string) (string, bool, error) {
	target, ok, err := e.leaf(path)
	if err != nil || !ok {
		return "", false, err
	}
	return strings.TrimSpace(target.Cur.Text), true, nil
}

// GetList returns the trimmed text of every element at path in document order. Blank
// fragments are dropped from an element that also holds other text.
func (e *XMLEditor) GetList(path string) ([]string, error) {
	matches, err := match(e.lines, path, modeExact)
	if err != nil {
		return nil, err
	}
	groups, _ := groupText(matches)
	values := make([]string, 0, len(groups))
	for _, g := range groups {
		texts := g.nonBlank()
		if len(texts) == 0 {
			values = append(values, "")
			continue
		}
		for _, m := range texts {
			values = append(values, strings.TrimSpace(m.Cur.Text))
		}
	}
	return values, nil
}

// GetChildren returns the name and text of each leaf element below path.
func (e *XMLEditor) GetChildren(path string) ([]Child, error) {
	query := NormalizePath(path)
	matches, err := match(e.lines, query, modePrefix)
	if err != nil {
		return nil, err
	}
	groups, _ := groupText(matches)
	var children []Child
	for _, g := range groups {
		if g.path == query {
			continue
		}
		texts := g.nonBlank()
		if len(texts) == 0 {
			// TODO: descend into embedded elements instead of rejecting them.
			return nil, fmt.Errorf("%w: %s holds embedded elements", ErrUnsupportedEdit, g.path)
		}
		children = append(children, Child{Name: lastSegment(g.path), Value: strings.TrimSpace(texts[0].Cur.Text)})
	}
	return children, nil
}

// leaf finds the text node Get and Set operate on: within the first element at path that
// holds character data, the first fragment that is not blank, else its first fragment.
func (e *XMLEditor) leaf(path string) (Match, bool, error) {
	matches, err := match(e.lines, path, modeExact)
	if err != nil {
		return Match{}, false, err
	}
	groups, other := groupText(matches)
	if len(groups) == 0 {
		if other {
			return Match{}, false, fmt.Errorf("%w: cannot extract non-leaf value at %s", ErrUnsupportedEdit, NormalizePath(path))
		}
		return Match{}, false, nil
	}
	if texts := groups[0].nonBlank(); len(texts) > 0 {
		return texts[0], true, nil
	}
	return groups[0].texts[0], true, nil
}

// textGroup is the character data found directly inside one element.
type textGroup struct {
	path  string
	texts []Match
}

func (g *textGroup) nonBlank() []Match {
	var out []Match
	for _, m := range g.texts {
		if strings.TrimSpace(m.Cur.Text) != "" {
			out = append(out, m)
		}
	}
	return out
}

// groupText gathers character data matches by owning element, in document order. It also
// reports whether any comment, processing instruction or directive matched.
func groupText(matches []Match) ([]*textGroup, bool) {
	var (
		groups []*textGroup
		other  bool
	)
	byOwner := map[int]*textGroup{}
	for _, m := range matches {
		if m.Cur.Kind != TokenCharData {
			other = true
			continue
		}
		g := byOwner[m.Owner]
		if g == nil {
			g = &textGroup{path: m.Path}
			byOwner[m.Owner] = g
			groups = append(groups, g)
		}
		g.texts = append(g.texts, m)
	}
	return groups, other
}

// Paths lists every distinct element path in document order.
func (e *XMLEditor) Paths() ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	err := walk(e.lines, func(path string, _ int, _, cur Token) {
		if cur.Kind != TokenStart {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// RootAttributes returns the attributes of the document element.
func (e *XMLEditor) RootAttributes() (map[string]string, error) {
	decoder := xml.NewDecoder(newLineReader(e.lines))
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: no root element", ErrParse)
			}
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(start.Attr))
		for _, attr := range start.Attr {
			attrs[attr.Name.Local] = attr.Value
		}
		return attrs, nil
	}
}
