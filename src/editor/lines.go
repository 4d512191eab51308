package editor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineEnding identifies the terminator of a physical line.
type LineEnding uint8

const (
	// EndingNone marks an unterminated final line.
	EndingNone LineEnding = iota
	// EndingLF marks a line ending in "\n".
	EndingLF
	// EndingCRLF marks a line ending in "\r\n".
	EndingCRLF
)

// String returns the escaped form of the terminator.
func (le LineEnding) String() string {
	switch le {
	case EndingLF:
		return "\\n"
	case EndingCRLF:
		return "\\r\\n"
	default:
		return ""
	}
}

// Sequence returns the terminator bytes.
func (le LineEnding) Sequence() string {
	switch le {
	case EndingLF:
		return "\n"
	case EndingCRLF:
		return "\r\n"
	default:
		return ""
	}
}

// Line is one physical line of the document, terminator included.
type Line struct {
	Number int
	Raw    string
	Ending LineEnding
	Dirty  bool
}

// Value returns the line without its terminator.
func (l *Line) Value() string {
	return l.Raw[:len(l.Raw)-len(l.Ending.Sequence())]
}

// Len returns the byte length of the line including its terminator.
func (l *Line) Len() int {
	return len(l.Raw)
}

// Position addresses a byte inside the buffer. Both fields are zero-based.
type Position struct {
	Line   int
	Column int
}

// Lines is the document buffer: every byte of the file split into physical lines.
type Lines struct {
	lines []*Line
}

// ReadLines splits r on LF and CRLF. A CR that is not followed by LF is rejected.
func ReadLines(r io.Reader) (*Lines, error) {
	reader := bufio.NewReader(r)
	var (
		lines   []*Line
		current strings.Builder
	)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		switch b {
		case '\n':
			current.WriteByte(b)
			lines = append(lines, &Line{Number: len(lines) + 1, Raw: current.String(), Ending: EndingLF})
			current.Reset()
		case '\r':
			next, err := reader.ReadByte()
			if err != nil || next != '\n' {
				return nil, fmt.Errorf("%w: bare carriage return on line %d", ErrUnsupportedFormat, len(lines)+1)
			}
			current.WriteString("\r\n")
			lines = append(lines, &Line{Number: len(lines) + 1, Raw: current.String(), Ending: EndingCRLF})
			current.Reset()
		default:
			current.WriteByte(b)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, &Line{Number: len(lines) + 1, Raw: current.String(), Ending: EndingNone})
	}
	return &Lines{lines: lines}, nil
}

// Len returns the number of lines.
func (b *Lines) Len() int {
	return len(b.lines)
}

// Line returns the line at the zero-based index.
func (b *Lines) Line(index int) (*Line, error) {
	if index < 0 || index >= len(b.lines) {
		return nil, fmt.Errorf("%w: line %d of %d", ErrOutOfRange, index, len(b.lines))
	}
	return b.lines[index], nil
}

// Dirty reports whether any line changed since the last successful write.
func (b *Lines) Dirty() bool {
	for _, line := range b.lines {
		if line.Dirty {
			return true
		}
	}
	return false
}

// WriteTo writes every line in order and clears the dirty flags once flushed.
func (b *Lines) WriteTo(w io.Writer) (int64, error) {
	writer := bufio.NewWriter(w)
	var total int64
	for _, line := range b.lines {
		n, err := writer.WriteString(line.Raw)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if err := writer.Flush(); err != nil {
		return total, err
	}
	for _, line := range b.lines {
		line.Dirty = false
	}
	return total, nil
}

// Bytes serializes the buffer without touching the dirty flags.
func (b *Lines) Bytes() []byte {
	var buf bytes.Buffer
	for _, line := range b.lines {
		buf.WriteString(line.Raw)
	}
	return buf.Bytes()
}

// Replace swaps raw[from:to] of the line at index for text and reports whether it changed.
func (b *Lines) Replace(index, from, to int, text string) (bool, error) {
	line, next, err := b.prepare(index, from, to, text)
	if err != nil {
		return false, err
	}
	if next == line.Raw {
		return false, nil
	}
	line.Raw = next
	line.Dirty = true
	return true, nil
}

// prepare validates a replacement and returns the line together with its candidate content.
func (b *Lines) prepare(index, from, to int, text string) (*Line, string, error) {
	line, err := b.Line(index)
	if err != nil {
		return nil, "", err
	}
	if from < 0 || from > to || to > line.Len() {
		return nil, "", fmt.Errorf("%w: columns %d..%d on line %d of length %d", ErrOutOfRange, from, to, index, line.Len())
	}
	return line, line.Raw[:from] + text + line.Raw[to:], nil
}

// Slice returns the raw text between two positions, terminators included.
func (b *Lines) Slice(from, to Position) (string, error) {
	if from.Line > to.Line || (from.Line == to.Line && from.Column > to.Column) {
		return "", fmt.Errorf("%w: %v after %v", ErrOutOfRange, from, to)
	}
	var builder strings.Builder
	for i := from.Line; i <= to.Line; i++ {
		if i == b.Len() && i == to.Line && to.Column == 0 {
			break
		}
		line, err := b.Line(i)
		if err != nil {
			return "", err
		}
		start, end := 0, line.Len()
		if i == from.Line {
			start = from.Column
		}
		if i == to.Line {
			end = to.Column
		}
		if start > end || end > line.Len() {
			return "", fmt.Errorf("%w: columns %d..%d on line %d", ErrOutOfRange, start, end, i)
		}
		builder.WriteString(line.Raw[start:end])
	}
	return builder.String(), nil
}
