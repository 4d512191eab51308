package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Console reads commands and answers from one stream and prints to another.
type Console struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewConsole constructs a console over in and out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		writer: out,
	}
}

// ReadLine reads one line without its terminator. A final line without a newline is
// returned before io.EOF.
func (c *Console) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Print writes raw text.
func (c *Console) Print(text string) {
	fmt.Fprint(c.writer, text)
}

// Println writes a line with newline.
func (c *Console) Println(text string) {
	fmt.Fprintln(c.writer, text)
}

// Confirm asks a yes/no question until it gets an answer. Closed input counts as "no".
func (c *Console) Confirm(question string) (bool, error) {
	for {
		c.Print(question + " (y/n): ")
		answer, err := c.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.Println("")
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.Println("请输入 y 或 n")
	}
}

// ConfirmSave asks whether the unsaved edits of path should be written back.
func (c *Console) ConfirmSave(path string) (bool, error) {
	return c.Confirm(fmt.Sprintf("%s 有未保存的修改，是否写回? [%s]", filepath.Base(path), path))
}
