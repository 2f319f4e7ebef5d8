package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// ErrInputClosed is returned when the input stream ends mid-prompt.
var ErrInputClosed = errors.New("input terminated")

// LineReader reads answers from a terminal without blocking past context
// cancellation.
type LineReader struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewLineReader creates a reader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine reads one trimmed line. A canceled context returns
// ErrInputCancelled immediately; the pending read finishes in the
// background.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err  error
		line string
	}
	ch := make(chan result, 1)

	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		line, err := r.reader.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-ch:
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && strings.TrimSpace(res.line) != "" {
				return strings.TrimSpace(res.line), nil
			}
			if errors.Is(res.err, io.EOF) {
				return "", ErrInputClosed
			}
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

// Ask writes prompt and returns the answer.
func (r *LineReader) Ask(ctx context.Context, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return r.ReadLine(ctx)
}

// Confirm asks a yes/no question. Anything but y/yes is no.
func (r *LineReader) Confirm(ctx context.Context, w io.Writer, question string) (bool, error) {
	answer, err := r.Ask(ctx, w, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
