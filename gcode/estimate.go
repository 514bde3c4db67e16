package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// Estimator predicts how long the plotter needs for a program. It only
// reads the program text, so it works on any file the emitter produced.
type Estimator struct {
	// TravelSpeed is the feed rate (mm/min) assumed for moves without F.
	TravelSpeed float64
	// PenToggle is the settle time in seconds of one pen lift or drop.
	PenToggle float64
	// SafetyMargin multiplies the raw total.
	SafetyMargin float64
}

// DefaultEstimator matches the plotter the defaults were tuned on.
func DefaultEstimator() Estimator {
	return Estimator{TravelSpeed: 500, PenToggle: 0.5, SafetyMargin: 1.2}
}

// Summary is the breakdown of an estimate.
type Summary struct {
	Seconds        float64
	PenToggles     int
	DrawDistance   float64
	TravelDistance float64
	Lines          int
}

// Duration returns Seconds as a time.Duration.
func (s Summary) Duration() time.Duration { return Seconds(s.Seconds) }

// Seconds converts fractional seconds to a time.Duration.
func Seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// Estimate returns the expected run time in seconds.
func (e Estimator) Estimate(r io.Reader) (float64, error) {
	s, err := e.Analyze(r)
	if err != nil {
		return 0, err
	}
	return s.Seconds, nil
}

// EstimateString is Estimate over an in-memory program.
func (e Estimator) EstimateString(program string) (float64, error) {
	return e.Estimate(strings.NewReader(program))
}

// Analyze walks the program from the origin. Distances are relative, so
// the absolute position of the drawing does not matter.
func (e Estimator) Analyze(r io.Reader) (Summary, error) {
	var (
		sum     Summary
		x, y    float64
		penDown bool
		total   float64
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "(") {
			continue
		}
		sum.Lines++
		b, err := ParseLine(line)
		if err != nil {
			return Summary{}, fmt.Errorf("line %d: %w", lineNo, err)
		}

		switch {
		case b.IsPenUp():
			total += e.PenToggle
			sum.PenToggles++
			penDown = false
		case b.IsPenDown():
			total += e.PenToggle
			sum.PenToggles++
			penDown = true
		}

		if !b.IsMove() {
			continue
		}
		nx, ny := x, y
		if v, ok := b.Get('X'); ok {
			nx = v
		}
		if v, ok := b.Get('Y'); ok {
			ny = v
		}
		feed := e.TravelSpeed
		if v, ok := b.Get('F'); ok {
			feed = v
		}
		dist := math.Hypot(nx-x, ny-y)
		if dist > 0 {
			if feed <= 0 {
				return Summary{}, fmt.Errorf("line %d: feed rate must be positive, got %g", lineNo, feed)
			}
			total += dist / (feed / 60)
			if penDown {
				sum.DrawDistance += dist
			} else {
				sum.TravelDistance += dist
			}
		}
		x, y = nx, ny
	}
	if err := scanner.Err(); err != nil {
		return Summary{}, err
	}
	sum.Seconds = total * e.SafetyMargin
	return sum, nil
}
