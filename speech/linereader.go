package speech

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"
)

// LineReader treats each line of r as one recognized group. A blank line
// or no input within Timeout counts as silence.
type LineReader struct {
	Timeout time.Duration

	once      sync.Once
	closeOnce sync.Once
	r         io.Reader
	lines     chan string
	done      chan struct{}
	stopped   chan struct{}
	err       error
}

// NewLineReader wraps r. A non-positive timeout uses DefaultTimeout.
func NewLineReader(r io.Reader, timeout time.Duration) *LineReader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LineReader{
		Timeout: timeout,
		r:       r,
		lines:   make(chan string),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (l *LineReader) start() {
	go func() {
		defer close(l.stopped)
		defer close(l.lines)
		scanner := bufio.NewScanner(l.r)
		for scanner.Scan() {
			select {
			case l.lines <- scanner.Text():
			case <-l.done:
				return
			}
		}
		l.err = scanner.Err()
	}()
}

// Listen waits for the next line. After Close it reports io.EOF.
func (l *LineReader) Listen(ctx context.Context) (string, error) {
	select {
	case <-l.done:
		return "", io.EOF
	default:
	}
	l.once.Do(l.start)
	timer := time.NewTimer(l.Timeout)
	defer timer.Stop()
	select {
	case line, ok := <-l.lines:
		if !ok {
			if l.err != nil {
				return "", l.err
			}
			return "", io.EOF
		}
		if line == "" {
			return "", ErrSilence
		}
		return line, nil
	case <-timer.C:
		return "", ErrSilence
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops delivering lines. The reading goroutine exits once its
// pending read returns; the underlying reader is not closed.
func (l *LineReader) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}
