package editor

import "io"

// lineReader streams the buffer to the XML decoder without joining the lines, so the
// positions the decoder reports are positions in the buffer that will be edited.
type lineReader struct {
	lines *Lines
	line  int
	pos   int
}

func newLineReader(lines *Lines) *lineReader {
	return &lineReader{lines: lines}
}

// Read copies as many lines as needed to fill p.
func (r *lineReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n < len(p) {
		if r.line >= r.lines.Len() {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		raw := r.lines.lines[r.line].Raw
		copied := copy(p[n:], raw[r.pos:])
		n += copied
		r.pos += copied
		if r.pos >= len(raw) {
			r.line++
			r.pos = 0
		}
	}
	return n, nil
}

// ReadByte lets xml.NewDecoder use the reader without wrapping it in a bufio.Reader.
func (r *lineReader) ReadByte() (byte, error) {
	for r.line < r.lines.Len() {
		raw := r.lines.lines[r.line].Raw
		if r.pos < len(raw) {
			b := raw[r.pos]
			r.pos++
			return b, nil
		}
		r.line++
		r.pos = 0
	}
	return 0, io.EOF
}
