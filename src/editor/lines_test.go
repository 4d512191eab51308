package editor_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmledit/src/editor"
)

func TestReadLinesEndings(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("a\r\nb\nc"))
	require.NoError(t, err)
	require.Equal(t, 3, lines.Len())

	want := []struct {
		raw    string
		value  string
		ending editor.LineEnding
	}{
		{"a\r\n", "a", editor.EndingCRLF},
		{"b\n", "b", editor.EndingLF},
		{"c", "c", editor.EndingNone},
	}
	for i, w := range want {
		line, err := lines.Line(i)
		require.NoError(t, err)
		assert.Equal(t, i+1, line.Number)
		assert.Equal(t, w.raw, line.Raw)
		assert.Equal(t, w.value, line.Value())
		assert.Equal(t, w.ending, line.Ending)
		assert.False(t, line.Dirty)
	}
	assert.Equal(t, "a\r\nb\nc", string(lines.Bytes()))
}

func TestReadLinesRejectsBareCR(t *testing.T) {
	for _, input := range []string{"a\rb\n", "a\r"} {
		_, err := editor.ReadLines(strings.NewReader(input))
		assert.ErrorIs(t, err, editor.ErrUnsupportedFormat, "input %q", input)
	}
}

func TestReadLinesEmpty(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, lines.Len())
	assert.Empty(t, lines.Bytes())
}

func TestReplaceMarksDirtyOnlyOnChange(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("<a>x</a>\n"))
	require.NoError(t, err)

	changed, err := lines.Replace(0, 3, 4, "x")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, lines.Dirty())

	changed, err = lines.Replace(0, 3, 4, "yz")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, lines.Dirty())
	assert.Equal(t, "<a>yz</a>\n", string(lines.Bytes()))
}

func TestReplaceOutOfRange(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("abc\n"))
	require.NoError(t, err)

	cases := []struct {
		index, from, to int
	}{
		{1, 0, 0},
		{-1, 0, 0},
		{0, 2, 1},
		{0, -1, 1},
		{0, 0, 5},
	}
	for _, c := range cases {
		_, err := lines.Replace(c.index, c.from, c.to, "z")
		assert.ErrorIs(t, err, editor.ErrOutOfRange, "case %+v", c)
	}
	assert.False(t, lines.Dirty())
	assert.Equal(t, "abc\n", string(lines.Bytes()))

	// the terminator is addressable
	changed, err := lines.Replace(0, 3, 4, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "abc", string(lines.Bytes()))
}

func TestLineOutOfRange(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("abc\n"))
	require.NoError(t, err)
	_, err = lines.Line(1)
	assert.ErrorIs(t, err, editor.ErrOutOfRange)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteToClearsDirtyOnlyOnSuccess(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("one\ntwo\n"))
	require.NoError(t, err)
	_, err = lines.Replace(1, 0, 3, "2")
	require.NoError(t, err)

	_, err = lines.WriteTo(failingWriter{})
	require.Error(t, err)
	assert.True(t, lines.Dirty())

	var buf bytes.Buffer
	n, err := lines.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("one\n2\n")), n)
	assert.Equal(t, "one\n2\n", buf.String())
	assert.False(t, lines.Dirty())
}

func TestSliceAcrossLines(t *testing.T) {
	lines, err := editor.ReadLines(strings.NewReader("<a>\n  x\n</a>\n"))
	require.NoError(t, err)

	text, err := lines.Slice(editor.Position{Line: 0, Column: 3}, editor.Position{Line: 2, Column: 0})
	require.NoError(t, err)
	assert.Equal(t, "\n  x\n", text)

	text, err = lines.Slice(editor.Position{Line: 2, Column: 4}, editor.Position{Line: 3, Column: 0})
	require.NoError(t, err)
	assert.Equal(t, "\n", text)

	_, err = lines.Slice(editor.Position{Line: 1, Column: 0}, editor.Position{Line: 0, Column: 0})
	assert.ErrorIs(t, err, editor.ErrOutOfRange)
}
