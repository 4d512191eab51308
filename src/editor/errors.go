package editor

import (
	"errors"
	"fmt"
)

// Errors returned by editor operations.
var (
	// ErrIO indicates the backing file is missing, inaccessible or failed to read/write.
	ErrIO = errors.New("io error")

	// ErrUnsupportedFormat indicates a malformed line terminator sequence.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrParse indicates the document is not well-formed XML.
	ErrParse = errors.New("parse error")

	// ErrOutOfRange indicates a line index or column offset outside the buffer.
	ErrOutOfRange = errors.New("out of range")

	// ErrUnsupportedEdit indicates a request the editor does not implement.
	ErrUnsupportedEdit = errors.New("unsupported edit")

	// ErrPathNotFound indicates Set targeted a path with no text node. It wraps ErrUnsupportedEdit.
	ErrPathNotFound = fmt.Errorf("%w: path not found, cannot create", ErrUnsupportedEdit)
)
