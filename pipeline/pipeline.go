// Package pipeline turns text batches into program files and plotting jobs.
// It owns the drawing cursor, so consecutive batches continue where the
// previous one stopped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ByLCY/quill/batch"
	"github.com/ByLCY/quill/binding"
	"github.com/ByLCY/quill/dispatch"
	"github.com/ByLCY/quill/gcode"
	"github.com/ByLCY/quill/glyph"
	"github.com/ByLCY/quill/layout"
	"github.com/ByLCY/quill/queue"
	"github.com/ByLCY/quill/renderer"
)

// ErrWrite means the program file could not be written. The batch is
// dropped and the cursor stays where it was.
var ErrWrite = errors.New("write program file")

// TimestampLayout formats ${timestamp} in output names.
const TimestampLayout = "20060102_150405"

const maxCollisions = 1000

// Previewer renders a picture of the strokes next to the program file.
type Previewer interface {
	renderer.Renderer
	Ext() string
}

type Options struct {
	Glyphs    *glyph.Table
	Params    layout.Params
	Start     layout.Cursor
	Emitter   renderer.Renderer
	Estimator gcode.Estimator
	// Preview is optional.
	Preview Previewer
	Dir     string
	// Name is the file name template, e.g. "output_${timestamp}.gcode".
	Name string
	// Debug writes the layout result as JSON next to each program.
	Debug  bool
	Now    func() time.Time
	Logger *slog.Logger
}

// Processor renders batches one at a time.
type Processor struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	cursor layout.Cursor
}

// New validates opts and returns a processor positioned at opts.Start.
func New(opts Options) (*Processor, error) {
	if opts.Glyphs == nil {
		return nil, errors.New("pipeline: glyph table is required")
	}
	if opts.Emitter == nil {
		return nil, errors.New("pipeline: emitter is required")
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = "output_${timestamp}.gcode"
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{opts: opts, logger: logger, cursor: opts.Start}, nil
}

// Cursor returns the position the next batch starts at.
func (p *Processor) Cursor() layout.Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Process lays out, renders, writes and estimates one batch. The cursor only
// advances when the program file was written and read back; a file that
// cannot be estimated is removed again.
func (p *Processor) Process(text batch.TextBatch) (dispatch.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := layout.Build(string(text), p.cursor, layout.BuildOptions{
		Glyphs: p.opts.Glyphs,
		Params: p.opts.Params,
	})
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("布局计算失败: %w", err)
	}
	program, err := p.opts.Emitter.Render(res)
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("生成 G-code 失败: %w", err)
	}
	path, err := p.write(program)
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	summary, err := p.estimate(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			p.logger.Warn("remove unestimated program", "file", path, "error", rmErr)
		}
		return dispatch.Job{}, fmt.Errorf("估算 %s 失败: %w", path, err)
	}
	p.cursor = res.End

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if p.opts.Preview != nil {
		p.writePreview(res, base+p.opts.Preview.Ext())
	}
	if p.opts.Debug {
		if err := layout.WriteDebugJSON(res, base+".json"); err != nil {
			p.logger.Warn("write layout debug json", "error", err)
		}
	}

	job := dispatch.NewJob(path, summary.Duration())
	p.logger.Info("program written",
		"job", job.ID,
		"file", path,
		"chars", len([]rune(string(text))),
		"segments", len(res.Segments),
		"wraps", res.Wraps,
		"estimate", job.Estimate,
		"draw_mm", summary.DrawDistance,
	)
	return job, nil
}

// Run pops batches in order and queues their jobs. The job queue is closed
// when Run returns, so the scheduler drains and stops.
func (p *Processor) Run(ctx context.Context, batches *queue.Queue[batch.TextBatch], jobs *queue.Queue[dispatch.Job]) error {
	defer jobs.Close()
	for {
		text, err := batches.Pop(ctx)
		if errors.Is(err, queue.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		job, err := p.Process(text)
		if err != nil {
			p.logger.Error("batch dropped", "text", string(text), "error", err)
			continue
		}
		if !jobs.Push(job) {
			p.logger.Warn("job queue closed, job not scheduled", "file", job.Path)
		}
	}
}

// write creates the program file without ever replacing an existing one.
func (p *Processor) write(program []byte) (string, error) {
	name := binding.Interpolate(p.opts.Name, binding.Vars{
		"timestamp": p.opts.Now().Format(TimestampLayout),
	})
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < maxCollisions; n++ {
		candidate := name
		if n > 0 {
			candidate = stem + "-" + strconv.Itoa(n) + ext
		}
		path := filepath.Join(p.opts.Dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(program); err != nil {
			f.Close()
			os.Remove(path)
			return "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s after %d attempts", name, maxCollisions)
}

func (p *Processor) estimate(path string) (gcode.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return gcode.Summary{}, err
	}
	defer f.Close()
	return p.opts.Estimator.Analyze(f)
}

func (p *Processor) writePreview(res *layout.Result, path string) {
	data, err := p.opts.Preview.Render(res)
	if err != nil {
		p.logger.Warn("render preview", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		p.logger.Warn("write preview", "file", path, "error", err)
	}
}
