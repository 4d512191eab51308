package editor

import (
	"fmt"
	"strings"
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Set replaces the text node Get reads at path with value, keeping the blanks that surround
// it. It reports false when the node already holds value.
//
// Line breaks inside the trimmed old value or inside value are not handled: the replaced
// range is computed on a single line, so an old value spanning lines fails with ErrOutOfRange
// and a new value containing "\n" is written into one line as is.
func (e *XMLEditor) Set(path, value string) (bool, error) {
	target, ok, err := e.leaf(path)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrPathNotFound, NormalizePath(path))
	}
	old, err := e.lines.Slice(target.Cur.Start, target.Cur.End)
	if err != nil {
		return false, err
	}

	s := scanBlanks(old)
	replacement := textEscaper.Replace(value)
	if s.trimmed == replacement {
		return false, nil
	}
	fullOld := s.leading + s.trimmed + s.trailing
	fullNew := s.leading + replacement + s.trailing
	index := target.Cur.Start.Line + s.lineOffset
	column := target.Cur.Start.Column
	if s.lineOffset > 0 {
		column = 0
	}

	line, next, err := e.lines.prepare(index, column, column+len(fullOld), fullNew)
	if err != nil {
		return false, err
	}
	if next == line.Raw {
		return false, nil
	}
	e.history.beforeChange(e.lines)
	changed, err := e.lines.Replace(index, column, column+len(fullOld), fullNew)
	if err != nil {
		return false, err
	}
	e.logger.Debug("value replaced", "file", e.path, "path", target.Path, "line", index+1, "column", column)
	return changed, nil
}

// blankScan splits a raw text node into the blanks kept around the replaced value.
type blankScan struct {
	leading    string
	trimmed    string
	trailing   string
	lineOffset int
}

// scanBlanks walks the value from both ends. Space and tab runs accumulate; crossing a line
// break resets the run, and on the leading side moves the edit to the next line.
func scanBlanks(raw string) blankScan {
	var s blankScan
	from := 0
	leadStart := 0
scanFront:
	for ; from < len(raw); from++ {
		switch raw[from] {
		case ' ', '\t':
		case '\r':
			leadStart = from + 1
		case '\n':
			s.lineOffset++
			leadStart = from + 1
		default:
			break scanFront
		}
	}
	s.leading = raw[leadStart:from]

	to := len(raw)
	trailEnd := len(raw)
scanBack:
	for ; to > from; to-- {
		switch raw[to-1] {
		case ' ', '\t':
		case '\r', '\n':
			trailEnd = to - 1
		default:
			break scanBack
		}
	}
	s.trailing = raw[to:trailEnd]
	s.trimmed = raw[from:to]
	return s
}
