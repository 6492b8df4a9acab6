// Package selector renders a numbered choice table and reads the user's
// pick from a line-oriented input.
package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/twitchwatch/internal/twitch"
)

var (
	// ErrInfoOnly ends a run after the table was printed. It is not a failure.
	ErrInfoOnly = errors.New("info only")

	// ErrDeclined is returned when the user answers N to a confirmation. It
	// is not a failure.
	ErrDeclined = errors.New("declined")

	// ErrNoChoices is returned for an empty item list.
	ErrNoChoices = errors.New("nothing to choose from")
)

// ReadError wraps a failure to read the next input line, including end of
// input and cancellation of the context.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read input: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError is returned for input that cannot be treated as text.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("input %q is not valid UTF-8", e.Input)
}

const retryNotice = "Try again!"

type lineResult struct {
	line string
	err  error
}

// Prompter owns the input and output streams of an interactive session.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	pending chan lineResult

	renderer *lipgloss.Renderer
	header   lipgloss.Style
	index    lipgloss.Style
	notice   lipgloss.Style
}

// New builds a Prompter. Styling is dropped automatically when out is not a
// terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	renderer := lipgloss.NewRenderer(out)
	return &Prompter{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
		header:   renderer.NewStyle().Bold(true),
		index:    renderer.NewStyle().Faint(true),
		notice:   renderer.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Out returns the writer the prompter prints to.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Choose lets the user pick one of items.
//
// With info set the table is printed and ErrInfoOnly returned without
// reading input. A single item is confirmed with a y/N question. Otherwise
// the table is printed and numbers are read until one is in range.
// Cancelling ctx aborts a pending read with a ReadError.
func Choose[T twitch.Listable](ctx context.Context, p *Prompter, items []T, info bool) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrNoChoices
	}
	if info {
		p.render(rowsOf(items))
		return zero, ErrInfoOnly
	}
	if len(items) == 1 {
		if err := p.confirm(ctx, items[0].DisplayName()); err != nil {
			return zero, err
		}
		return items[0], nil
	}

	fmt.Fprintf(p.out, "Choose by typing the number next to the option [1 - %d]\n", len(items))
	p.render(rowsOf(items))
	idx, err := p.pick(ctx, len(items))
	if err != nil {
		return zero, err
	}
	return items[idx], nil
}

func (p *Prompter) confirm(ctx context.Context, name string) error {
	for {
		fmt.Fprintf(p.out, "Watch %s? [y/N]\n", name)
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		switch line {
		case "y":
			return nil
		case "N":
			return ErrDeclined
		}
		p.retry()
	}
}

// pick returns the zero-based index of the chosen row.
func (p *Prompter) pick(ctx context.Context, count int) (int, error) {
	for {
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			p.retry()
			continue
		}
		return n - 1, nil
	}
}

func (p *Prompter) retry() {
	fmt.Fprintln(p.out, p.notice.Render(retryNotice))
}

// readLine waits for the next line or for ctx to end. At most one read is
// in flight; a read abandoned by cancellation is picked up by the next call.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ReadError{Err: err}
	}
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	var res lineResult
	select {
	case <-ctx.Done():
		return "", &ReadError{Err: ctx.Err()}
	case res = <-p.pending:
		p.pending = nil
	}

	line, err := res.line, res.err
	if err != nil {
		// A last line without a trailing newline still counts.
		if !errors.Is(err, io.EOF) || line == "" {
			return "", &ReadError{Err: err}
		}
	}
	if !utf8.ValidString(line) {
		return "", &ParseError{Input: line}
	}
	return strings.TrimSpace(line), nil
}

func rowsOf[T twitch.Listable](items []T) [][]twitch.Field {
	rows := make([][]twitch.Field, len(items))
	for i, item := range items {
		rows[i] = item.Fields()
	}
	return rows
}
