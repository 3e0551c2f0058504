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

// LineReader reads answers from the terminal without blocking past context
// cancellation.
type LineReader struct {
	reader      *bufio.Reader
	writer      io.Writer
	readingLock sync.Mutex
}

// NewLineReader creates a LineReader that prompts on w.
func NewLineReader(r io.Reader, w io.Writer) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	if w == nil {
		w = io.Discard
	}
	return &LineReader{reader: bufio.NewReader(r), writer: w}
}

// ReadLine reads one trimmed line, respecting context cancellation. A final
// line without a newline is returned as read.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		if errors.Is(err, io.EOF) && value != "" {
			err = nil
		}
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine finishes on its own once input arrives.
		return "", ErrInputCancelled
	case res := <-resultCh:
		return strings.TrimSpace(res.value), res.err
	}
}

// Ask prompts for a value and returns it. An empty answer is an error when
// required is set.
func (r *LineReader) Ask(ctx context.Context, label string, required bool) (string, error) {
	if _, err := fmt.Fprint(r.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := r.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if required && answer == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return answer, nil
}
