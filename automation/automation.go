// Package automation drives the sender application's on-screen controls
// through external helper commands.
//
// The locate command receives ${template} and ${confidence} and prints the
// matched region as "x y w h". Exit status 1 means the control is not on
// screen. The click command receives ${x} and ${y}.
package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/quill/binding"
)

// DefaultConfidence is the match threshold handed to the locate command.
const DefaultConfidence = 0.6

// Region is a rectangle in screen pixels.
type Region struct {
	X, Y, W, H int
}

// Center returns the click point of the region.
func (r Region) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// ParseRegion reads "x y w h" from helper output.
func ParseRegion(out string) (Region, error) {
	fields := strings.Fields(out)
	if len(fields) != 4 {
		return Region{}, fmt.Errorf("expected \"x y w h\", got %q", strings.TrimSpace(out))
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Region{}, fmt.Errorf("region field %d: %w", i, err)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return Region{}, fmt.Errorf("region has negative size: %q", strings.TrimSpace(out))
	}
	return Region{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// Exec implements locate and click by running command templates.
type Exec struct {
	LocateCmd   []string
	ClickCmd    []string
	Confidence  float64
	TemplateDir string
	Logger      *slog.Logger
}

// Locate looks for the template image on screen.
func (e *Exec) Locate(ctx context.Context, template string) (Region, bool, error) {
	if len(e.LocateCmd) == 0 {
		return Region{}, false, errors.New("automation: locate command not configured")
	}
	confidence := e.Confidence
	if confidence <= 0 {
		confidence = DefaultConfidence
	}
	path := template
	if e.TemplateDir != "" && !filepath.IsAbs(template) {
		path = filepath.Join(e.TemplateDir, template)
	}
	args := binding.Expand(e.LocateCmd, binding.Vars{
		"template":   path,
		"confidence": confidence,
	})
	out, err := e.run(ctx, args)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			e.logger().Debug("control not on screen", "template", template)
			return Region{}, false, nil
		}
		return Region{}, false, fmt.Errorf("locate %s: %w", template, err)
	}
	region, err := ParseRegion(out)
	if err != nil {
		return Region{}, false, fmt.Errorf("locate %s: %w", template, err)
	}
	return region, true, nil
}

// Click presses the center of the region.
func (e *Exec) Click(ctx context.Context, r Region) error {
	if len(e.ClickCmd) == 0 {
		return errors.New("automation: click command not configured")
	}
	x, y := r.Center()
	args := binding.Expand(e.ClickCmd, binding.Vars{"x": x, "y": y})
	if _, err := e.run(ctx, args); err != nil {
		return fmt.Errorf("click %d,%d: %w", x, y, err)
	}
	return nil
}

func (e *Exec) run(ctx context.Context, args []string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil && stderr.Len() > 0 {
		e.logger().Debug("automation helper stderr", "cmd", args[0], "stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), err
}

func (e *Exec) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Static answers Locate from a fixed table and only logs clicks. It backs
// dry runs where no screen is available.
type Static struct {
	Regions map[string]Region
	Logger  *slog.Logger
}

// Locate reports the configured region for template, if any.
func (s *Static) Locate(_ context.Context, template string) (Region, bool, error) {
	r, ok := s.Regions[template]
	return r, ok, nil
}

// Click logs the click point.
func (s *Static) Click(_ context.Context, r Region) error {
	x, y := r.Center()
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("click", "x", x, "y", y)
	return nil
}
