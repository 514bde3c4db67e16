package layout

import (
	"fmt"

	"github.com/ByLCY/quill/glyph"
)

// advanceFactor spaces glyph origins 20% wider than the glyph cell.
const advanceFactor = 1.2

// Build lays text out as pen motions starting at cur. The cursor is not
// shared state: the advanced position comes back in Result.End and the
// caller decides whether to keep it.
//
// Every rune is looked up in the font (unknown runes draw as space). Lines
// wrap purely on width: before a glyph is placed, if it would cross
// MaxLineWidth the cursor returns to MarginLeft one LineSpacing lower.
// Explicit newlines get no special treatment.
func Build(text string, cur Cursor, opts BuildOptions) (*Result, error) {
	if opts.Glyphs == nil {
		return nil, fmt.Errorf("layout: 缺少笔画字体 Glyphs")
	}
	p := opts.Params
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Text:   text,
		Start:  cur,
		Params: p,
	}
	advance := p.Advance()
	for _, r := range text {
		if cur.X+advance > p.MaxLineWidth {
			cur.X = p.MarginLeft
			cur.Y -= p.LineSpacing
			res.Wraps++
		}
		for _, pt := range opts.Glyphs.Scaled(r, p.CharWidth, p.CharHeight) {
			res.Segments = append(res.Segments, Segment{
				X:       cur.X + pt.DX,
				Y:       cur.Y + pt.DY,
				PenDown: pt.PenDown,
			})
		}
		cur.X += advance
	}
	cur.Initialized = true
	res.End = cur
	return res, nil
}

// Validate rejects geometry that cannot fit a single glyph per line.
func (p Params) Validate() error {
	switch {
	case p.CharWidth <= 0:
		return fmt.Errorf("layout: 字符宽度必须为正数: %g", p.CharWidth)
	case p.CharHeight <= 0:
		return fmt.Errorf("layout: 字符高度必须为正数: %g", p.CharHeight)
	case p.LineSpacing <= 0:
		return fmt.Errorf("layout: 行距必须为正数: %g", p.LineSpacing)
	case p.MarginLeft+p.Advance() > p.MaxLineWidth:
		return fmt.Errorf("layout: 行宽 %g 放不下一个字符（左边距 %g，字宽 %g）", p.MaxLineWidth, p.MarginLeft, p.CharWidth)
	}
	return nil
}

// Glyph returns the segments one rune would produce at the given origin,
// without wrapping or advancing. Useful for comparing strokes.
func Glyph(table *glyph.Table, r rune, x, y float64, p Params) []Segment {
	stroke := table.Scaled(r, p.CharWidth, p.CharHeight)
	out := make([]Segment, len(stroke))
	for i, pt := range stroke {
		out[i] = Segment{X: x + pt.DX, Y: y + pt.DY, PenDown: pt.PenDown}
	}
	return out
}
