package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/quill/batch"
	"github.com/ByLCY/quill/dispatch"
	"github.com/ByLCY/quill/queue"
	"github.com/ByLCY/quill/speech"
)

// Source feeds recognized text into sink until ctx ends or input runs out.
type Source func(ctx context.Context, sink speech.Sink) error

// Session wires an input source, the processor and the scheduler together.
type Session struct {
	Source    Source
	Threshold int
	Processor *Processor
	Scheduler *dispatch.Scheduler
	// Jobs is the queue Scheduler was built with.
	Jobs   *queue.Queue[dispatch.Job]
	Logger *slog.Logger
}

// Serve runs the three stages until every queued job has finished.
//
// Ending sourceCtx (or the source returning) stops input: the partial batch
// is flushed, the batch queue is closed, and processor and scheduler drain
// what is left. Cancelling ctx aborts the drain between jobs; sourceCtx
// should be derived from ctx so the source stops too.
//
// A failing source never cancels the other stages. Its error is returned
// once the drain is done.
func (s *Session) Serve(ctx, sourceCtx context.Context) error {
	if s.Source == nil || s.Processor == nil || s.Scheduler == nil || s.Jobs == nil {
		return errors.New("pipeline: session is missing a stage")
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batches := queue.New[batch.TextBatch]()
	batcher := batch.New(s.Threshold, batches)

	var (
		g         errgroup.Group
		sourceErr error
	)
	g.Go(func() error {
		defer batches.Close()
		defer batcher.Flush()
		err := s.Source(sourceCtx, batcher)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("input stopped, draining queued work", "error", err)
			sourceErr = fmt.Errorf("输入源异常退出: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.Processor.Run(ctx, batches, s.Jobs)
	})
	g.Go(func() error {
		return s.Scheduler.Run(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return errors.Join(sourceErr, err)
}
