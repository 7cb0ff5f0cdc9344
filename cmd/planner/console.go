package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// console is the terminal Interactor: it prints to out and reads whole lines from in.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// readLine returns the next trimmed line. io.EOF is returned only when nothing was read.
func (c *console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) Confirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", message)
	line, err := c.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// PromptText shows def in brackets; an empty answer keeps it. End of input dismisses.
func (c *console) PromptText(ctx context.Context, message, def string) (string, bool, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", message, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", message)
	}
	line, err := c.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if line == "" {
		return def, true, nil
	}
	return line, true, nil
}

// ask is PromptText for the flow itself; a dismissed prompt ends the session.
func (c *console) ask(ctx context.Context, message, def string) (string, error) {
	v, ok, err := c.PromptText(ctx, message, def)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", io.EOF
	}
	return v, nil
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
