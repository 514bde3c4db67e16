// Package speech feeds recognized text into the batcher.
package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrSilence means nothing was said within the listen timeout.
	ErrSilence = errors.New("silence")
	// ErrUnintelligible means audio was heard but not understood.
	ErrUnintelligible = errors.New("speech not recognized")
)

// DefaultTimeout is how long one Listen call waits for speech.
const DefaultTimeout = 5 * time.Second

// errorPause throttles a recognizer that fails on every call.
var errorPause = time.Second

// Recognizer yields one recognized word group per call. It returns
// ErrSilence on timeout and io.EOF once the source is exhausted.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Sink receives recognized groups and silence markers.
type Sink interface {
	Text(group string)
	Silence()
}

// Listen drives rec into sink until ctx is done or rec is exhausted.
// Recognition failures of any kind are logged and skipped.
func Listen(ctx context.Context, rec Recognizer, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		text, err := rec.Listen(ctx)
		switch {
		case err == nil:
			text = strings.TrimSpace(text)
			if text == "" {
				sink.Silence()
				continue
			}
			logger.Info("recognized", "text", text)
			sink.Text(text)
		case errors.Is(err, ErrSilence):
			logger.Debug("silence")
			sink.Silence()
		case errors.Is(err, ErrUnintelligible):
			logger.Warn("could not understand audio", "error", err)
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			logger.Error("recognizer failed", "error", err)
			select {
			case <-time.After(errorPause):
			case <-ctx.Done():
				return nil
			}
		}
	}
}
