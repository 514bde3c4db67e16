// Package device starts the G-code sender application that talks to the
// plotter.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ByLCY/quill/binding"
)

// DefaultPaths are the usual install locations of Universal G-code Sender.
var DefaultPaths = []string{
	`C:\Program Files\Universal-G-Code-Sender\UniversalGcodeSender.jar`,
	`C:\Program Files (x86)\Universal-G-Code-Sender\UniversalGcodeSender.jar`,
	"/usr/local/bin/UniversalGcodeSender.jar",
	"/opt/UniversalGcodeSender/UniversalGcodeSender.jar",
}

var (
	// JarCommand launches a Java build of the sender.
	JarCommand = []string{"java", "-jar", "${path}", "--open", "${file}"}
	// NativeCommand launches a native sender executable.
	NativeCommand = []string{"${path}", "--open", "${file}", "--console", "new"}
)

// ErrNotFound is returned when no sender installation exists.
var ErrNotFound = errors.New("sender application not found")

// Discover returns the first path that exists.
func Discover(paths []string) (string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(paths, ", "))
}

// Launcher starts the sender with a program file. It does not wait for the
// sender to exit.
type Launcher struct {
	Path string
	// Command overrides the argv template. ${path} and ${file} are expanded.
	Command []string
	Logger  *slog.Logger
}

// Args returns the argv used for file.
func (l *Launcher) Args(file string) []string {
	tmpl := l.Command
	if len(tmpl) == 0 {
		if strings.EqualFold(filepath.Ext(l.Path), ".jar") {
			tmpl = JarCommand
		} else {
			tmpl = NativeCommand
		}
	}
	return binding.Expand(tmpl, binding.Vars{"path": l.Path, "file": file})
}

// Send starts the sender on path.
func (l *Launcher) Send(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("program file: %w", err)
	}
	if l.Path == "" {
		return ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// The sender outlives the job, so it is not bound to ctx.
	args := l.Args(abs)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}
	l.logger().Info("sender started", "pid", cmd.Process.Pid, "file", abs)
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger().Debug("sender exited", "error", err)
		}
	}()
	return nil
}

func (l *Launcher) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// LogSender only logs the file. It stands in for the device in dry runs.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs path after checking that it exists.
func (s LogSender) Send(_ context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("program file: %w", err)
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("dry run: would send", "file", path)
	return nil
}
