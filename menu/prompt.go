// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrInterrupted is returned by a Prompter when the user interrupts the
// prompt or input ends. The menu treats it like Exit.
var ErrInterrupted = errors.New("interrupted")

// Prompter asks the user one question at a time.
type Prompter interface {
	// Select shows options and returns the index of the chosen one.
	Select(message string, options []string) (int, error)
	// Input reads a line of text. When validate is non-nil, answers it rejects
	// are reported and the same question is asked again.
	Input(message string, validate func(string) error) (string, error)
}

// NewPrompter returns a SurveyPrompter when in is a terminal and a
// LinePrompter otherwise, so piped input still drives the menu.
func NewPrompter(in, out *os.File) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return NewSurveyPrompter(in, out, out)
	}
	return NewLinePrompter(in, out)
}

// LinePrompter reads answers line by line. Choices are numbered and may be
// answered with the number or the exact option text.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Select(message string, options []string) (int, error) {
	for {
		fmt.Fprintf(p.out, "? %s\n", message)
		for i, option := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
		}
		fmt.Fprint(p.out, "> ")

		answer, err := p.readLine()
		if err != nil {
			return -1, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, option := range options {
			if answer == option {
				return i, nil
			}
		}
		fmt.Fprintf(p.out, ">> %q is not one of the choices\n", answer)
	}
}

func (p *LinePrompter) Input(message string, validate func(string) error) (string, error) {
	for {
		fmt.Fprintf(p.out, "? %s ", message)

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				fmt.Fprintf(p.out, ">> %v\n", err)
				continue
			}
		}
		return answer, nil
	}
}

// readLine returns the next trimmed line. A final line without a newline
// is still an answer; only an empty read at EOF interrupts.
func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInterrupted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
