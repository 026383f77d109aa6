package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before the user
// answers a prompt.
var ErrInputCancelled = errors.New("input canceled")

// Prompter asks the user for input on the terminal. Reads are
// context-aware: a cancelled context abandons the pending read instead of
// blocking on stdin.
type Prompter struct {
	in     *bufio.Reader
	inMu   sync.Mutex
	writer io.Writer
}

// NewPrompter creates a prompter over the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		in:     bufio.NewReader(reader),
		writer: writer,
	}
}

// readLine reads one trimmed line. On cancellation the caller stops
// waiting; the blocked read goroutine drains on the next keypress.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)

	go func() {
		p.inMu.Lock()
		defer p.inMu.Unlock()

		text, err := p.in.ReadString('\n')
		ch <- answer{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case a := <-ch:
		if a.err != nil {
			return "", a.err
		}
		return strings.TrimSpace(a.text), nil
	}
}

// Ask prints a label and reads one trimmed line.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.writer, FormatPrompt(label))
	return p.readLine(ctx)
}

// AskDefault reads one line, falling back to def when the answer is empty.
func (p *Prompter) AskDefault(ctx context.Context, label, def string) (string, error) {
	fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("%s [%s]", label, def)))

	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question and returns true only for an explicit yes.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprint(p.writer, FormatPrompt(question+" (y/N)"))

	answer, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
