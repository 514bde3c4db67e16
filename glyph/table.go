// Package glyph holds the stroke model of the plotter font: every character
// maps to an ordered list of pen offsets inside its character cell.
package glyph

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ByLCY/quill/dsl"
	"github.com/ByLCY/quill/fonts"
)

// Space is the fallback character for lookups that miss the table.
const Space = ' '

// ErrInvalidGlyph reports a glyph definition that breaks the stroke model.
var ErrInvalidGlyph = errors.New("glyph: invalid glyph")

// Point is one offset of a stroke. DX/DY are in glyph units (fractions of
// the character cell) inside a Table and in output units once scaled.
type Point struct {
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	PenDown bool    `json:"penDown"`
}

// Stroke is the ordered path of one glyph. The first point is always a
// pen-up travel to the start of the glyph.
type Stroke []Point

// Table maps characters to strokes. Lookups are total.
type Table struct {
	name    string
	strokes map[rune]Stroke
}

// New builds a table from a parsed font file.
func New(file *dsl.File) (*Table, error) {
	if file == nil {
		return nil, fmt.Errorf("glyph: font file is nil")
	}
	t := &Table{
		name:    file.Name,
		strokes: make(map[rune]Stroke, len(file.Glyphs)),
	}
	for _, g := range file.Glyphs {
		r := g.Char.Rune()
		if _, dup := t.strokes[r]; dup {
			return nil, fmt.Errorf("%w: %q defined twice (%s)", ErrInvalidGlyph, r, g.Pos)
		}
		if len(g.Points) == 0 {
			return nil, fmt.Errorf("%w: %q has no points (%s)", ErrInvalidGlyph, r, g.Pos)
		}
		if g.Points[0].PenDown() {
			return nil, fmt.Errorf("%w: %q must start with a move (%s)", ErrInvalidGlyph, r, g.Points[0].Pos)
		}
		stroke := make(Stroke, len(g.Points))
		for i, p := range g.Points {
			stroke[i] = Point{DX: p.X, DY: p.Y, PenDown: p.PenDown()}
		}
		t.strokes[r] = stroke
	}
	if _, ok := t.strokes[Space]; !ok {
		return nil, fmt.Errorf("%w: font %s has no space glyph", ErrInvalidGlyph, file.Name)
	}
	return t, nil
}

// Parse parses and builds a table from font source.
func Parse(name string, data []byte) (*Table, error) {
	file, err := dsl.ParseBytes(name, data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", name, err)
	}
	return New(file)
}

// Load resolves src the same way fonts are referenced in config:
// "embed:<name>" for the built-in fonts, anything else is a file path.
func Load(src string) (*Table, error) {
	if src == "" || strings.HasPrefix(src, "embed:") {
		if src == "" {
			src = fonts.DefaultFont
		}
		data, err := fonts.Load(src)
		if err != nil {
			return nil, err
		}
		return Parse(src, data)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return Parse(src, data)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in font. It panics if the embedded font is
// broken, which the package tests rule out.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load("")
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Name returns the font name declared in the source.
func (t *Table) Name() string { return t.name }

// Len returns the number of defined characters.
func (t *Table) Len() int { return len(t.strokes) }

// Has reports whether r has its own glyph.
func (t *Table) Has(r rune) bool {
	_, ok := t.strokes[r]
	return ok
}

// Lookup returns the stroke for r, falling back to the space glyph.
// The lookup is case-sensitive.
func (t *Table) Lookup(r rune) Stroke {
	if s, ok := t.strokes[r]; ok {
		return s
	}
	return t.strokes[Space]
}

// Scaled returns the stroke for r in output units.
func (t *Table) Scaled(r rune, charWidth, charHeight float64) Stroke {
	src := t.Lookup(r)
	out := make(Stroke, len(src))
	for i, p := range src {
		out[i] = Point{DX: p.DX * charWidth, DY: p.DY * charHeight, PenDown: p.PenDown}
	}
	return out
}
