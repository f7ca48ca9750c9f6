// Package input reads lines of expression source for the mixfix shell, either
// from a plain stream or from a terminal through readline.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of input at a time.
type LineReader interface {
	// ReadLine reads a single line with surrounding whitespace removed. It
	// blocks until a line is ready. Blank lines are skipped unless blanks are
	// allowed. At end of input the returned string is empty and the error is
	// io.EOF.
	ReadLine() (string, error)

	// AllowBlank sets whether ReadLine returns blank lines. By default it does
	// not.
	AllowBlank(allow bool)

	// Close releases the resources of the LineReader. It must be called once
	// the LineReader is no longer needed.
	Close() error
}

// DirectReader reads lines from any io.Reader. It does not sanitize the input
// of control and escape sequences.
//
// DirectReader should not be created directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader reads lines from stdin using a Go implementation of the
// GNU Readline library. This keeps input clear of typing and editing escape
// sequences and gives line history. It should only be used when stdin and
// stdout are a TTY.
//
// InteractiveReader should not be created directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a DirectReader with a buffered reader on r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates an InteractiveReader that shows prompt before
// each line. The returned InteractiveReader must have Close called on it to
// tear down readline.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: prompt,
	}, nil
}

// Close does nothing; a DirectReader does not own its stream.
func (dr *DirectReader) Close() error {
	return nil
}

// Close tears down readline.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next line from the stream. If the stream ends partway
// through a line, that line is returned and the next call returns io.EOF.
func (dr *DirectReader) ReadLine() (string, error) {
	for {
		line, err := dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || dr.blanksAllowed {
			return line, nil
		}
	}
}

// ReadLine reads the next line from the terminal.
func (ir *InteractiveReader) ReadLine() (string, error) {
	for {
		line, err := ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || ir.blanksAllowed {
			return line, nil
		}
	}
}

func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// Prompt returns the current prompt.
func (ir *InteractiveReader) Prompt() string {
	return ir.prompt
}
