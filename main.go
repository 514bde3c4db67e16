package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ByLCY/quill/automation"
	"github.com/ByLCY/quill/batch"
	"github.com/ByLCY/quill/config"
	"github.com/ByLCY/quill/device"
	"github.com/ByLCY/quill/dispatch"
	"github.com/ByLCY/quill/glyph"
	"github.com/ByLCY/quill/logs"
	"github.com/ByLCY/quill/pipeline"
	"github.com/ByLCY/quill/queue"
	canvasrenderer "github.com/ByLCY/quill/renderer/canvas"
	gcoderenderer "github.com/ByLCY/quill/renderer/gcode"
	"github.com/ByLCY/quill/shell"
	"github.com/ByLCY/quill/speech"
)

type flags struct {
	config   string
	out      string
	text     string
	preview  string
	logLevel string
	shell    bool
	dryRun   bool
	debug    bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "YAML 配置文件路径")
	flag.StringVar(&f.out, "out", "", "G-code 输出目录（覆盖配置）")
	flag.StringVar(&f.text, "text", "", "只转换这段文字并打印预计时间，不驱动设备")
	flag.StringVar(&f.preview, "preview", "", "预览格式 pdf|svg|png（覆盖配置）")
	flag.StringVar(&f.logLevel, "log-level", "", "日志级别 debug|info|warn|error")
	flag.BoolVar(&f.shell, "shell", false, "使用交互式终端代替语音识别")
	flag.BoolVar(&f.dryRun, "dry-run", false, "不启动发送程序，完整模拟调度流程")
	flag.BoolVar(&f.debug, "debug", false, "在 G-code 旁输出布局调试 JSON")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatalf("运行失败: %v", err)
	}
}

// run 加载配置并串联识别、渲染与调度三个角色。
func run(f flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.out != "" {
		cfg.Output.Dir = f.out
	}
	if f.preview != "" {
		cfg.Output.Preview = f.preview
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logs.Level.Set(level)
	logger, closeLog, err := logs.New(logs.Options{Writer: os.Stderr, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	proc, err := newProcessor(cfg, f.debug, logger)
	if err != nil {
		return err
	}

	if f.text != "" {
		job, err := proc.Process(batch.TextBatch(f.text))
		if err != nil {
			return err
		}
		fmt.Printf("已生成 G-code：%s（预计 %s）\n", job.Path, job.Estimate.Round(100*time.Millisecond))
		return nil
	}

	sched, jobs, err := newScheduler(cfg, f.dryRun, logger)
	if err != nil {
		return err
	}

	root, cancel := context.WithCancel(context.Background())
	defer cancel()
	sourceCtx, stopSource := context.WithCancel(root)
	defer stopSource()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
		case <-root.Done():
			return
		}
		logger.Info("shutting down after queued jobs, signal again to abort")
		stopSource()
		select {
		case <-sigs:
			logger.Warn("aborting")
			cancel()
		case <-root.Done():
		}
	}()

	session := &pipeline.Session{
		Source: func(ctx context.Context, sink speech.Sink) error {
			if f.shell {
				return shell.New(sink, func() string { return status(sched) }).Run(ctx)
			}
			rec := newRecognizer(cfg)
			if c, ok := rec.(io.Closer); ok {
				defer c.Close()
			}
			return speech.Listen(ctx, rec, sink, logger)
		},
		Threshold: cfg.Batch.Threshold,
		Processor: proc,
		Scheduler: sched,
		Jobs:      jobs,
		Logger:    logger,
	}
	err = session.Serve(root, sourceCtx)
	st := sched.Stats()
	logger.Info("stopped", "completed", st.Completed, "failed", st.Failed, "pending", st.Pending)
	return err
}

func newProcessor(cfg config.Config, debug bool, logger *slog.Logger) (*pipeline.Processor, error) {
	table, err := glyph.Load(cfg.Font)
	if err != nil {
		return nil, fmt.Errorf("加载笔画字体失败: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	opts := pipeline.Options{
		Glyphs:    table,
		Params:    cfg.Params(),
		Start:     cfg.Start(),
		Emitter:   gcoderenderer.NewEmitter(cfg.Speed.Travel, cfg.Speed.Draw),
		Estimator: cfg.Estimator(),
		Dir:       cfg.Output.Dir,
		Name:      cfg.Output.Name,
		Debug:     debug,
		Logger:    logger,
	}
	if cfg.Output.Preview != "" {
		format, err := canvasrenderer.ParseFormat(cfg.Output.Preview)
		if err != nil {
			return nil, err
		}
		opts.Preview = canvasrenderer.NewRenderer(format)
	}
	return pipeline.New(opts)
}

func newScheduler(cfg config.Config, dryRun bool, logger *slog.Logger) (*dispatch.Scheduler, *queue.Queue[dispatch.Job], error) {
	opts := cfg.DispatchOptions()
	opts.Logger = logger
	opts.Observer = func(t dispatch.Transition) {
		if t.Err != nil {
			logger.Warn("job transition", "job", t.Job.ID, "to", t.To, "error", t.Err)
		}
	}

	var (
		sender dispatch.Sender
		auto   dispatch.Automation
	)
	if dryRun {
		opts.LaunchSettle, opts.ConnectSettle = 0, 0
		sender = device.LogSender{Logger: logger}
		auto = &automation.Static{
			Regions: map[string]automation.Region{opts.StartTemplate: {X: 0, Y: 0, W: 1, H: 1}},
			Logger:  logger,
		}
	} else {
		path, err := device.Discover(cfg.Device.Paths)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sender found", "path", path)
		sender = &device.Launcher{Path: path, Command: cfg.Device.Command, Logger: logger}
		auto = &automation.Exec{
			LocateCmd:   cfg.Automation.Locate,
			ClickCmd:    cfg.Automation.Click,
			Confidence:  cfg.Automation.Confidence,
			TemplateDir: cfg.Automation.TemplateDir,
			Logger:      logger,
		}
	}

	jobs := queue.New[dispatch.Job]()
	return dispatch.New(sender, auto, jobs, opts), jobs, nil
}

func newRecognizer(cfg config.Config) speech.Recognizer {
	if len(cfg.Speech.Command) > 0 {
		return &speech.Command{Args: cfg.Speech.Command, Timeout: cfg.Speech.Timeout}
	}
	return speech.NewLineReader(os.Stdin, cfg.Speech.Timeout)
}

func status(s *dispatch.Scheduler) string {
	st := s.Stats()
	line := fmt.Sprintf("%s, connected=%t, completed=%d, failed=%d, pending=%d",
		s.State(), s.Connected(), st.Completed, st.Failed, st.Pending)
	if job, ok := s.Current(); ok {
		line += fmt.Sprintf(", current=%s (%s)", job.Path, job.Estimate)
	}
	return line
}
