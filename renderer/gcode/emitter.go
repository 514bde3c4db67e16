// Package gcoderenderer emits the G-code instruction stream for a stroke
// layout.
package gcoderenderer

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/ByLCY/quill/gcode"
	"github.com/ByLCY/quill/layout"
	"github.com/ByLCY/quill/renderer"
)

var _ renderer.Renderer = (*Emitter)(nil)

// Emitter turns segments into G-code. Speeds are feed rates in mm/min.
type Emitter struct {
	TravelSpeed float64
	DrawSpeed   float64
}

// NewEmitter returns an emitter with the given feed rates.
func NewEmitter(travel, draw float64) *Emitter {
	return &Emitter{TravelSpeed: travel, DrawSpeed: draw}
}

// Render writes one complete program: preamble, a travel to the cursor the
// batch started from, the strokes, and a trailing pen-up. The program never
// returns to the origin; the pen stays where the last stroke ended.
func (e *Emitter) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if e.TravelSpeed <= 0 || e.DrawSpeed <= 0 {
		return nil, fmt.Errorf("进给速度必须为正数: travel=%g draw=%g", e.TravelSpeed, e.DrawSpeed)
	}

	var buf bytes.Buffer
	line := func(code, comment string) {
		buf.WriteString(code)
		if comment != "" {
			buf.WriteString(" ; ")
			buf.WriteString(comment)
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("; G-code generated from text\n")
	line(gcode.UnitsMillimeters, "Set units to millimeters")
	line(gcode.AbsolutePositioning, "Set absolute positioning")

	startComment := "Move to starting position"
	if result.Start.Initialized {
		startComment = "Continue from previous position"
	}
	line(gcode.PenUp, "Pen up")
	line(e.move(gcode.Rapid, result.Start.X, result.Start.Y, e.TravelSpeed), startComment)

	for _, s := range result.Segments {
		if s.PenDown {
			line(gcode.PenDown, "Pen down")
			line(e.move(gcode.Linear, s.X, s.Y, e.DrawSpeed), "Draw line")
			continue
		}
		line(gcode.PenUp, "Pen up")
		line(e.move(gcode.Rapid, s.X, s.Y, e.TravelSpeed), "Move without drawing")
	}

	line(gcode.PenUp, "Pen up")
	line(gcode.EndProgram, "End program")
	return buf.Bytes(), nil
}

func (e *Emitter) move(code string, x, y, feed float64) string {
	return code + " X" + formatCoord(x) + " Y" + formatCoord(y) + " F" + formatCoord(feed)
}

// formatCoord prints at most four decimals and drops trailing zeros.
func formatCoord(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
