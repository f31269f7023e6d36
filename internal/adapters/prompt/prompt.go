// Package prompt collects a line of input from an operator before a
// mutating command runs. Commands prompt first and only then issue the
// request, so a cancel never leaves a half-applied change behind.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCanceled reports that the operator declined to answer. An empty
// line, ctrl-D and a closed stdin all count as declining.
var ErrCanceled = errors.New("prompt: canceled")

// Prompter asks the operator one question and returns the trimmed answer.
type Prompter interface {
	Ask(question string) (string, error)
}

// Terminal is a Prompter over a line-oriented reader, normally stdin.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal returns a Terminal reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

// Ask prints the question and reads one line.
// POST: the answer has surrounding whitespace removed
// POST: an empty answer or end of input returns ErrCanceled
func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("prompt: read answer: %w", err)
		}
		return "", ErrCanceled
	}
	answer := strings.TrimSpace(t.in.Text())
	if answer == "" {
		return "", ErrCanceled
	}
	return answer, nil
}
