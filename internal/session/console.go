package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is the interactive surface. A single goroutine owns the input so
// that waiting for Enter during a recording never races with a prompt.
type Console struct {
	out   io.Writer
	lines chan string
	err   error
}

// NewConsole starts reading in from a background goroutine. The goroutine
// ends when in reaches EOF or fails. Lines have no length limit.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, lines: make(chan string)}
	go c.readLoop(in)
	return c
}

func (c *Console) readLoop(in io.Reader) {
	defer close(c.lines)
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == nil || line != "" {
			c.lines <- strings.TrimRight(line, "\r\n")
		}
		if err != nil {
			c.err = err
			return
		}
	}
}

// Say prints text followed by a newline.
func (c *Console) Say(text string) {
	fmt.Fprintln(c.out, text)
}

// Ask prints prompt without a newline and reads the answer.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	return c.ReadLine(ctx)
}

// ReadLine returns the next input line with surrounding blanks trimmed.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", fmt.Errorf("read input: %w", c.err)
		}
		return strings.TrimSpace(line), nil
	}
}

// StopSignal returns a channel that is closed when the next line arrives or
// the input ends. Cancelling ctx releases the wait without consuming a line.
func (c *Console) StopSignal(ctx context.Context) <-chan struct{} {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-c.lines:
			close(stop)
		}
	}()
	return stop
}
